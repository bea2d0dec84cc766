package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/pathfinder/internal/logger"
	"github.com/spigell/pathfinder/internal/resume"
	"github.com/spigell/pathfinder/internal/session"
)

const (
	PromptAsk     = "Ask a career question"
	PromptQuiz    = "Take the career quiz"
	PromptResume  = "Analyze a resume"
	PromptProfile = "Show my profile"
	PromptExit    = "Exit"
)

var errExit = errors.New("exit requested")

var menu = promptui.Select{
	Label: "What next?",
	Items: []string{PromptAsk, PromptQuiz, PromptResume, PromptProfile, PromptExit},
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the career counsellor in the terminal",
	Run: func(_ *cobra.Command, _ []string) {
		chat()
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func chat() {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig(viper.GetViper())
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	deps, err := buildComponents(ctx, config, logger)
	if err != nil {
		logger.Fatal("configuring clients", zap.Error(err))
	}

	store := session.NewStore(0)
	id := store.Create()

	fmt.Println("🎓 Pathfinder. This chatbot answers only career-related queries. Avoid using it for emergencies.")

	for {
		_, action, err := menu.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		err = store.With(id, func(sess *session.Session) error {
			return handleChatAction(ctx, action, deps, sess)
		})
		if errors.Is(err, errExit) {
			return
		}
		if err != nil && !errors.Is(err, promptui.ErrInterrupt) {
			logger.Error("action failed", zap.String("action", action), zap.Error(err))
		}
	}
}

func handleChatAction(ctx context.Context, action string, deps *components, sess *session.Session) error {
	switch action {
	case PromptAsk:
		return askLoop(ctx, deps, sess)
	case PromptQuiz:
		return runQuiz(sess)
	case PromptResume:
		return analyzeResumeFile(ctx, deps, sess)
	case PromptProfile:
		if profile, ok := sess.Profile(); ok {
			fmt.Printf("Suggested profile: %s\n", profile)
		} else {
			fmt.Println("Take the career quiz to get a suggested profile.")
		}
		return nil
	case PromptExit:
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// askLoop keeps the conversation going until an empty line.
func askLoop(ctx context.Context, deps *components, sess *session.Session) error {
	input := promptui.Prompt{Label: "You (empty line to go back)"}

	for {
		question, err := input.Run()
		if err != nil {
			return err
		}

		question = strings.TrimSpace(question)
		if question == "" {
			return nil
		}

		fmt.Printf("\nPathfinder: %s\n\n", deps.router.Handle(ctx, question, sess))
	}
}

func runQuiz(sess *session.Session) error {
	sess.StartQuiz()
	engine := sess.Quiz()

	for {
		question, ok := engine.Current()
		if !ok {
			break
		}

		step := promptui.Select{
			Label: fmt.Sprintf("Question %d of %d: %s", engine.State().Step+1, engine.Len(), question.Prompt),
			Items: question.Options,
		}

		_, choice, err := step.Run()
		if err != nil {
			return err
		}

		if err := sess.AnswerQuiz(choice); err != nil {
			return err
		}
	}

	fmt.Println("Quiz Completed!")
	for _, suggestion := range engine.Breakdown() {
		fmt.Println(suggestion)
	}

	profile, _ := sess.Profile()
	fmt.Printf("Suggested profile: %s\n", profile)

	return nil
}

func analyzeResumeFile(ctx context.Context, deps *components, sess *session.Session) error {
	pathPrompt := promptui.Prompt{
		Label: "Resume path (.pdf or .docx)",
		Validate: func(input string) error {
			ext := strings.ToLower(filepath.Ext(strings.TrimSpace(input)))
			if ext != ".pdf" && ext != ".docx" {
				return resume.ErrUnsupportedFormat
			}
			return nil
		},
	}

	path, err := pathPrompt.Run()
	if err != nil {
		return err
	}
	path = strings.TrimSpace(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading resume: %w", err)
	}

	text := resume.Extract(path, data)
	if resume.IsFailure(text) {
		fmt.Println(text)
		sess.SetResume(&session.ResumeAnalysis{Filename: filepath.Base(path), Error: text})
		return nil
	}

	if deps.classifier == nil {
		fmt.Printf("Extracted %d characters. Resume classification is disabled.\n", len(text))
		return nil
	}

	result := deps.classifier.Classify(ctx, text)
	sess.SetResume(&session.ResumeAnalysis{
		Filename: filepath.Base(path),
		Labels:   result.Labels,
		Scores:   result.Scores,
		Error:    result.Error,
	})

	if result.Failed() {
		fmt.Printf("⚠ Classification failed: %s\n", result.Error)
		return nil
	}

	for i, label := range result.Labels {
		fmt.Printf("- %s: %.1f%%\n", label, result.Scores[i]*100)
	}

	return nil
}
