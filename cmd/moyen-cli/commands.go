package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"moyen/internal/classifier"
	"moyen/internal/config"
	"moyen/internal/domain"
	"moyen/internal/engine"
	"moyen/internal/segment"
	"moyen/internal/session"
)

var sessionID string

var chatCmd = &cobra.Command{
	Use:   "chat <message>",
	Short: "Route one message and print the reply",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := buildEngine()
		if err != nil {
			return err
		}
		resp := eng.Service.HandleChat(cmd.Context(), domain.ChatRequest{
			Message:   strings.Join(args, " "),
			SessionID: sessionID,
		})
		fmt.Fprintln(cmd.OutOrStdout(), resp.Response)
		return nil
	},
}

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Chat interactively; context carries across lines",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		eng, err := buildEngine()
		if err != nil {
			return err
		}
		return runREPL(cmd.Context(), eng, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

var segmentCmd = &cobra.Command{
	Use:   "segment <message>",
	Short: "Print the clauses a message splits into",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for i, clause := range segment.Split(strings.Join(args, " ")) {
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", i+1, clause)
		}
		return nil
	},
}

var (
	vectorizerPath string
	modelPath      string
)

var classifyCmd = &cobra.Command{
	Use:   "classify <message>",
	Short: "Print the predicted tag and confidence for each clause",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		paths := config.LoadClassifierPaths()
		cls, err := classifier.Load(
			orDefault(vectorizerPath, paths.VectorizerPath),
			orDefault(modelPath, paths.ModelPath),
		)
		if err != nil {
			return err
		}
		return printClassifications(cmd.OutOrStdout(), cls, strings.Join(args, " "))
	},
}

func init() {
	chatCmd.Flags().StringVarP(&sessionID, "session", "s", "", "session id to route under")
	replCmd.Flags().StringVarP(&sessionID, "session", "s", "", "session id to route under")
	classifyCmd.Flags().StringVar(&vectorizerPath, "vectorizer", "", "vectorizer artifact (default $VECTORIZER_PATH or vectorizer.json)")
	classifyCmd.Flags().StringVar(&modelPath, "model", "", "model artifact (default $MODEL_PATH or model.json)")
}

func buildEngine() (*engine.Engine, error) {
	cfg, err := config.LoadCLIConfig()
	if err != nil {
		return nil, err
	}
	return engine.Build(cfg, session.NewMemoryStore(0), nil, newLogger(cfg.LogLevel))
}

func runREPL(ctx context.Context, eng *engine.Engine, in io.Reader, out io.Writer) error {
	id := sessionID
	if id == "" {
		id = "repl"
	}
	fmt.Fprintln(out, "Type a message, /reset to forget context, /quit to exit.")
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/reset":
			if err := eng.Service.ResetSession(ctx, id); err != nil {
				return err
			}
			fmt.Fprintln(out, "context cleared")
			continue
		}
		resp := eng.Service.HandleChat(ctx, domain.ChatRequest{Message: line, SessionID: id})
		fmt.Fprintln(out, resp.Response)
	}
}

type clauseClassifier interface {
	Classify(text string) (domain.Classification, error)
}

func printClassifications(out io.Writer, cls clauseClassifier, message string) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CLAUSE\tTAG\tCONFIDENCE")
	for _, clause := range segment.Split(message) {
		result, err := cls.Classify(clause)
		if err != nil {
			fmt.Fprintf(tw, "%s\t-\t%v\n", clause, err)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%.3f\n", clause, result.Tag, result.Confidence)
	}
	return tw.Flush()
}

func orDefault(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
