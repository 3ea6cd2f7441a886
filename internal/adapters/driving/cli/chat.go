package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var chatSession string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive question-answering session",
	Long: `Starts an interactive session. Each question is answered against the
index under the given role, and the conversation is recorded.

Session commands:
  /history   show the conversation so far
  /export    print the session as JSON
  /clear     discard the conversation
  /quit      exit`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	addQueryFlags(chatCmd)
	chatCmd.Flags().StringVar(&chatSession, "session", "", "session id (default: random)")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	if chatService == nil {
		if err := initServices(); err != nil {
			return err
		}
	}

	sessionID := chatSession
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	cmd.Printf("KnowGrid chat (role: %s, session: %s)\n", queryRole, sessionID)
	cmd.Println("Type a question, or /quit to exit.")
	cmd.Println()

	ctx := context.Background()
	scanner := bufio.NewScanner(cmd.InOrStdin())

	for {
		cmd.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			done, err := runChatCommand(ctx, cmd, sessionID, line)
			if err != nil {
				cmd.PrintErrf("Error: %v\n", err)
			}
			if done {
				break
			}
			continue
		}

		turn, err := chatService.Ask(ctx, sessionID, buildQueryRequest(line))
		if err != nil {
			cmd.PrintErrf("Error: %v\n", err)
			continue
		}

		cmd.Println(turn.Answer)
		for i, src := range turn.Sources {
			cmd.Printf("  [%d] %s (%.2f)\n", i+1, src.Meta.Source, src.Score)
		}
		cmd.Println()
	}

	return scanner.Err()
}

// runChatCommand handles /-prefixed session commands. Returns true when
// the session should end.
func runChatCommand(ctx context.Context, cmd *cobra.Command, sessionID, line string) (bool, error) {
	switch line {
	case "/quit", "/exit":
		return true, nil

	case "/history":
		turns, err := chatService.History(ctx, sessionID)
		if err != nil {
			return false, err
		}
		if len(turns) == 0 {
			cmd.Println("No turns yet.")
			return false, nil
		}
		for i, t := range turns {
			cmd.Printf("[%d] Q: %s\n", i+1, t.Query)
			cmd.Printf("    A: %s\n", t.Answer)
		}
		return false, nil

	case "/export":
		data, err := chatService.Export(ctx, sessionID)
		if err != nil {
			return false, err
		}
		cmd.Println(string(data))
		return false, nil

	case "/clear":
		if err := chatService.Clear(ctx, sessionID); err != nil {
			return false, err
		}
		cmd.Println("Session cleared.")
		return false, nil

	default:
		return false, fmt.Errorf("unknown command %q", line)
	}
}
