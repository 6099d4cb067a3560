package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yanqian/skinscan/internal/domain/chatbot"
	"github.com/yanqian/skinscan/pkg/logger"
	"github.com/yanqian/skinscan/pkg/util"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "skinscan-chat",
		Short:         "Offline SkinScan FAQ assistant",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().String("catalog", "", "path to a catalog JSON file (built-in catalog when empty)")
	rootCmd.PersistentFlags().Int64("seed", 0, "random seed for fallback replies (0 picks one)")

	rootCmd.AddCommand(askCmd())
	rootCmd.AddCommand(checkCatalogCmd())
	return rootCmd
}

func askCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question...>",
		Short: "Answer one question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalogPath, _ := cmd.Flags().GetString("catalog")
			seed, _ := cmd.Flags().GetInt64("seed")
			explain, _ := cmd.Flags().GetBool("explain")

			cliLogger := logger.NewCLI(cmd.ErrOrStderr())
			catalog := chatbot.NewCatalogLoader(catalogPath, cliLogger).Catalog()
			responder := chatbot.NewResponder(catalog, util.NewLockedRand(seed))

			reply := responder.Resolve(strings.Join(args, " "))
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, reply.Text)
			if explain {
				writeExplanation(out, reply)
			}
			return nil
		},
	}
	cmd.Flags().Bool("explain", false, "print which branch produced the reply")
	return cmd
}

func writeExplanation(out io.Writer, reply chatbot.Reply) {
	fmt.Fprintf(out, "source: %s\n", reply.Source)
	fmt.Fprintf(out, "normalized: %q\n", reply.Normalized)
	switch reply.Source {
	case chatbot.SourceFAQ:
		fmt.Fprintf(out, "matched: %s (score %.2f)\n", reply.MatchedQuestion, reply.Score)
	case chatbot.SourceNavigation:
		fmt.Fprintf(out, "intent: %s\n", reply.Intent)
	}
}

func checkCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-catalog <path>",
		Short: "Validate a catalog file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			catalog, err := chatbot.ReadCatalog(args[0])
			if err != nil {
				fmt.Fprintf(out, "unusable: %v\n", err)
				fmt.Fprintln(out, "the built-in catalog would be used instead")
				return fmt.Errorf("catalog %s is unusable", args[0])
			}
			fmt.Fprintf(out, "ok: %d faqs, %d general responses, %d navigation topics\n",
				len(catalog.FAQs), len(catalog.GeneralResponses), len(catalog.NavigationHelp))
			return nil
		},
	}
}
