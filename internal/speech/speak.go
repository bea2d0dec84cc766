package speech

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

const (
	DefaultSpeakURL  = "https://translate.google.com/translate_tts"
	DefaultLanguage  = "en"
	DefaultClipTTL   = 10 * time.Second
	maxChunkRunes    = 200
	tempFilePattern  = "pathfinder-tts-*.mp3"
	speakerUserAgent = "Mozilla/5.0"
)

var ErrEmptyText = errors.New("nothing to speak")

// Clip is synthesized audio stored in a temporary file.
type Clip struct {
	Path string
	Data []byte

	timer *time.Timer
	once  sync.Once
}

// Release removes the file before the scheduled cleanup.
func (c *Clip) Release() {
	if c == nil {
		return
	}

	if c.timer != nil {
		c.timer.Stop()
	}
	c.remove()
}

func (c *Clip) remove() {
	c.once.Do(func() {
		_ = os.Remove(c.Path)
	})
}

type Speaker struct {
	baseURL    string
	language   string
	ttl        time.Duration
	tempDir    string
	logger     *zap.Logger
	HTTPClient *http.Client
}

// NewSpeaker creates a speaker. Empty arguments fall back to defaults.
func NewSpeaker(logger *zap.Logger, baseURL, language string, ttl time.Duration) *Speaker {
	if baseURL = strings.TrimSpace(baseURL); baseURL == "" {
		baseURL = DefaultSpeakURL
	}
	if language = strings.TrimSpace(language); language == "" {
		language = DefaultLanguage
	}
	if ttl <= 0 {
		ttl = DefaultClipTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Speaker{
		baseURL:    baseURL,
		language:   language,
		ttl:        ttl,
		logger:     logger,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

// Speak synthesizes text and schedules the clip file for removal.
func (s *Speaker) Speak(ctx context.Context, text string) (*Clip, error) {
	chunks := splitText(text, maxChunkRunes)
	if len(chunks) == 0 {
		return nil, ErrEmptyText
	}

	var audio []byte
	for i, chunk := range chunks {
		data, err := s.fetch(ctx, chunk, i, len(chunks))
		if err != nil {
			return nil, err
		}
		audio = append(audio, data...)
	}

	file, err := os.CreateTemp(s.tempDir, tempFilePattern)
	if err != nil {
		return nil, fmt.Errorf("create clip file: %w", err)
	}
	if _, err := file.Write(audio); err != nil {
		file.Close()
		_ = os.Remove(file.Name())
		return nil, fmt.Errorf("write clip file: %w", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(file.Name())
		return nil, fmt.Errorf("close clip file: %w", err)
	}

	clip := &Clip{Path: file.Name(), Data: audio}
	clip.timer = time.AfterFunc(s.ttl, clip.remove)

	s.logger.Debug("speech clip created",
		zap.String("path", clip.Path),
		zap.Int("bytes", len(audio)),
		zap.Duration("ttl", s.ttl),
	)

	return clip, nil
}

func (s *Speaker) fetch(ctx context.Context, text string, idx, total int) ([]byte, error) {
	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("tl", s.language)
	params.Set("client", "tw-ob")
	params.Set("q", text)
	params.Set("idx", fmt.Sprint(idx))
	params.Set("total", fmt.Sprint(total))
	params.Set("textlen", fmt.Sprint(utf8.RuneCountInString(text)))

	req, err := http.NewRequest(http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", speakerUserAgent)

	data, err := doRequest(ctx, s.HTTPClient, req)
	if err != nil {
		return nil, fmt.Errorf("synthesize speech: %w", err)
	}
	return data, nil
}

// splitText breaks text on word boundaries into chunks of at most limit runes.
func splitText(text string, limit int) []string {
	var (
		chunks  []string
		current strings.Builder
		size    int
	)

	flush := func() {
		if size > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
			size = 0
		}
	}

	for _, word := range strings.Fields(text) {
		for utf8.RuneCountInString(word) > limit {
			flush()
			runes := []rune(word)
			chunks = append(chunks, string(runes[:limit]))
			word = string(runes[limit:])
		}
		if word == "" {
			continue
		}

		n := utf8.RuneCountInString(word)
		if size > 0 && size+1+n > limit {
			flush()
		}
		if size > 0 {
			current.WriteByte(' ')
			size++
		}
		current.WriteString(word)
		size += n
	}
	flush()

	return chunks
}
