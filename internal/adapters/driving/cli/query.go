package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/knowgrid/knowgrid/internal/core/domain"
	"github.com/knowgrid/knowgrid/internal/core/ports/driving"
)

var (
	queryRole       string
	queryDepartment string
	queryStrategy   string
	queryK          int
	queryJSON       bool
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Ask a question against the knowledge base",
	Long: `Retrieves context visible to the given role and synthesizes a grounded
answer citing the source documents. Without a configured LLM the command
returns the retrieved sources only.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	addQueryFlags(queryCmd)
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output result as JSON")
	rootCmd.AddCommand(queryCmd)
}

// addQueryFlags registers the retrieval flags shared by query, search
// and chat.
func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&queryRole, "role", string(domain.RoleGeneral), "caller role (admin, hr, engineer, finance, general)")
	cmd.Flags().StringVar(&queryDepartment, "department", "", "narrow results to one department")
	cmd.Flags().StringVar(&queryStrategy, "strategy", "", "retrieval strategy (similarity, mmr, multi_query)")
	cmd.Flags().IntVarP(&queryK, "top-k", "k", 0, "number of results (default 5)")
}

// buildQueryRequest assembles the request from the shared flags.
func buildQueryRequest(text string) driving.QueryRequest {
	return driving.QueryRequest{
		Text:       text,
		Role:       domain.Role(queryRole),
		Department: queryDepartment,
		Strategy:   domain.Strategy(queryStrategy),
		K:          queryK,
	}
}

func runQuery(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		if err := initServices(); err != nil {
			return err
		}
	}

	result, err := queryService.Query(context.Background(), buildQueryRequest(args[0]))
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(result.Answer)
	if len(result.Sources) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for i, src := range result.Sources {
			cmd.Printf("  [%d] %s (%s, %.2f)\n",
				i+1, src.Meta.Source, src.Meta.Department, src.Score)
		}
	}
	return nil
}
