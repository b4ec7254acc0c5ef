package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/dinebot/backend/internal/app"
	"github.com/zhouzirui/dinebot/backend/internal/config"
	"github.com/zhouzirui/dinebot/backend/internal/model/chat"
	kbModel "github.com/zhouzirui/dinebot/backend/internal/model/kb"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	kbDir string
	seed  uint64
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "kbtester",
		Short: "Exercise the knowledge base and conversation engine from the terminal",
		Long: `kbtester loads the same configuration as the API server (.env and
environment) and lets you query knowledge base files, ask the responder
a question, or hold a whole conversation on stdin.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.kbDir, "kb-dir", "", "knowledge base directory (overrides KB_DIR)")
	root.PersistentFlags().Uint64Var(&opts.seed, "seed", 0, "random seed for greeting and fallback phrases")

	root.AddCommand(newLookupCmd(opts), newAskCmd(opts), newChatCmd(opts))
	return root
}

func loadApp(ctx context.Context, cmd *cobra.Command, opts *rootOptions) (*app.App, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if opts.kbDir != "" {
		cfg.KB.Dir = opts.kbDir
	}
	if cmd.Flags().Changed("seed") {
		seed := opts.seed
		cfg.KB.RandomSeed = &seed
	}

	logger, err := cfg.Log.NewLogger(cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	return app.Build(ctx, cfg, logger)
}

func newLookupCmd(opts *rootOptions) *cobra.Command {
	var city, intent string

	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Print the knowledge base entries for a city and intent",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			entries, err := kbModel.Lookup(cmd.Context(), a.KB, city, intent)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		},
	}
	cmd.Flags().StringVar(&city, "city", "", "city name, e.g. Delhi")
	cmd.Flags().StringVar(&intent, "intent", kbModel.CategoryFAQ, "intent category")
	_ = cmd.MarkFlagRequired("city")
	return cmd
}

func newAskCmd(opts *rootOptions) *cobra.Command {
	var city, intent string

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer one question with the knowledge base responder",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			answer, ok := a.Responder.Answer(cmd.Context(), city, intent, strings.Join(args, " "))
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "(no answer)")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), answer)
			return nil
		},
	}
	cmd.Flags().StringVar(&city, "city", "", "city name; empty uses free-text mode")
	cmd.Flags().StringVar(&intent, "intent", "", "intent category; empty uses free-text mode")
	return cmd
}

func newChatCmd(opts *rootOptions) *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Hold a conversation on stdin, one message per line",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			return runChat(cmd.Context(), a, sessionID, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "session id (generated when empty)")
	return cmd
}

func runChat(ctx context.Context, a *app.App, sessionID string, in io.Reader, out io.Writer) error {
	greeting, err := a.Chat.HandleMessage(ctx, sessionID, "")
	if err != nil {
		return err
	}
	sessionID = greeting.SessionID
	fmt.Fprintf(out, "bot: %s\n", greeting.Response)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		reply, err := a.Chat.HandleMessage(ctx, sessionID, line)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "bot [%s]: %s\n", reply.State, reply.Response)

		if reply.State == string(chat.StateGoodbye) {
			return nil
		}
	}
	return scanner.Err()
}
