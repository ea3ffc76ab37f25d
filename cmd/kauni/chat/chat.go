// Package chatcmder provides the chat command for asking the kauni tourism
// guide questions through a running API server.
package chatcmder

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	apiclient "github.com/papercomputeco/kauni/api/client"
	"github.com/papercomputeco/kauni/cmd/kauni/stack"
	"github.com/papercomputeco/kauni/pkg/cliui"
	"github.com/papercomputeco/kauni/pkg/config"
)

type chatCommander struct {
	apiTarget string
	raw       bool

	client *apiclient.Client
	out    io.Writer
}

const chatLongDesc string = `Ask the kauni tourism guide questions.

With a question argument, asks once and prints the answer. Without one,
starts an interactive session; type "exit" or press Ctrl-D to leave.

Answers are rendered as markdown unless --raw is set. Each answer is
followed by its source (rag, fallback or guardrail) and confidence.

Examples:
  kauni chat "대전에서 가볼 만한 빵집 추천해줘"
  kauni chat
  kauni chat --api-target http://localhost:8000`

const chatShortDesc string = "Ask the tourism guide questions"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat [question]",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := stack.LoadConfig(cmd, []string{config.FlagAPITarget})
			if err != nil {
				return err
			}
			cmder.client, err = apiclient.New(cfg.Client.APITarget)
			if err != nil {
				return err
			}
			cmder.out = cmd.OutOrStdout()
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			if len(args) == 1 {
				return cmder.ask(ctx, args[0])
			}
			return cmder.repl(ctx, cmd.InOrStdin())
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagAPITarget, &cmder.apiTarget)
	cmd.Flags().BoolVar(&cmder.raw, "raw", false, "Print answers without markdown rendering")

	return cmd
}

// repl asks one question per input line. A failed question is reported and
// the session continues.
func (c *chatCommander) repl(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	prompt := cliui.SuccessStyle.Render("you> ")

	for {
		fmt.Fprint(c.out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(c.out)
			return scanner.Err()
		}

		switch line := strings.TrimSpace(scanner.Text()); line {
		case "":
		case "exit", "quit":
			return nil
		default:
			if err := c.ask(ctx, line); err != nil {
				fmt.Fprintf(c.out, "  %s %v\n\n", cliui.FailMark, err)
			}
		}
	}
}

func (c *chatCommander) ask(ctx context.Context, question string) error {
	result, err := c.client.Chat(ctx, question)
	if err != nil {
		return err
	}

	answer := result.Answer
	if !c.raw {
		if rendered, err := cliui.RenderMarkdown(answer); err == nil {
			answer = rendered
		}
	}

	fmt.Fprintln(c.out, answer)
	fmt.Fprintf(c.out, "  %s\n\n", cliui.AnswerFooter(result.Source, result.Confidence, len(result.Contexts)))
	return nil
}
