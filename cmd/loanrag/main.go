package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"loanrag/internal/api"
	"loanrag/internal/assistant"
	"loanrag/internal/domain"
	"loanrag/internal/tui"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	rootCmd := &cobra.Command{
		Use:   "loanrag",
		Short: "Search and summarize loan application records",
		Long: `Search a loan dataset by free text, compute approval statistics and
ask questions answered from the best matching records.

The dataset comes from data.path in the config (CSV or XLSX) or --data.
Without either, a built-in five-record sample is used.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to YAML config file (uses ./config.yaml or ~/.config/loanrag/config.yaml if not provided)")
	rootCmd.PersistentFlags().StringVar(&opts.dataPath, "data", "", "Dataset file (.csv or .xlsx), overrides data.path")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug|info|warn|error")

	rootCmd.AddCommand(
		newSearchCmd(&opts),
		newStatsCmd(&opts),
		newAskCmd(&opts),
		newInsightsCmd(&opts),
		newTUICmd(&opts),
		newServeCmd(&opts),
	)
	return rootCmd
}

func newSearchCmd(opts *options) *cobra.Command {
	var topK int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "search [query...]",
		Short: "Rank loan records against a free-text query",
		Long: `Rank loan records against a free-text query.

Example: loanrag search "graduate applicants with high income" --top-k 3`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if topK == 0 {
				topK = a.cfg.Search.TopK
			}
			results := a.svc.Search(strings.Join(args, " "), topK)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), results)
			}
			printResults(cmd.OutOrStdout(), results)
			return nil
		},
	}
	cmd.Flags().IntVar(&topK, "top-k", 0, "Maximum number of results (default search.top_k)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")
	return cmd
}

func newStatsCmd(opts *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print dataset statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			s := a.svc.Statistics()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), s)
			}
			printStatistics(cmd.OutOrStdout(), s)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print statistics as JSON")
	return cmd
}

func newAskCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "ask [question...]",
		Short: "Answer a question from the best matching records",
		Long: `Answer a question from the best matching records.

The answer comes from the configured assistant: "offline" (default) or
"openai" for any OpenAI-compatible chat completions endpoint.

Example: loanrag ask "why was LP001002 rejected?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			ans, err := a.svc.Ask(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ans.Text)
			if len(ans.Sources) > 0 {
				fmt.Fprintf(out, "\nSources: %s\n", strings.Join(ans.Sources, ", "))
			}
			return nil
		},
	}
}

func newInsightsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "insights",
		Short: "Describe approval patterns in the dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			text, err := a.svc.Insights(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
}

func newTUICmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Interactive chat and insights",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Log lines would corrupt the terminal UI.
			a, err := newApp(*opts, io.Discard)
			if err != nil {
				return err
			}
			p := tea.NewProgram(tui.New(a.svc), tea.WithAltScreen())
			stop, err := a.startWatcher(func() { p.Send(tui.DatasetReloadedMsg{}) })
			if err != nil {
				return err
			}
			defer stop()
			_, err = p.Run()
			return err
		},
	}
}

func newServeCmd(opts *options) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		Long: `Serve the JSON API:

  GET  /api/search?q=...&top_k=N
  GET  /api/statistics
  GET  /api/insights
  POST /api/ask            {"query": "..."}
  POST /api/dataset?format=csv|xlsx   (request body is the file)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			stop, err := a.startWatcher(nil)
			if err != nil {
				return err
			}
			defer stop()

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			srv := api.NewServer(a.svc, api.Config{DefaultTopK: a.cfg.Search.TopK, Logger: a.logger})
			return srv.ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default server.addr)")
	return cmd
}

func printResults(w io.Writer, results []domain.SearchResult) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No matching records.")
		return
	}
	for i, r := range results {
		fmt.Fprintf(w, "%d. %s  score=%.3f  status=%s  matched=%s\n",
			i+1, r.Record.LoanID, r.Score, r.Record.LoanStatus, strings.Join(r.MatchedFields, ","))
	}
}

func printStatistics(w io.Writer, s domain.Statistics) {
	fmt.Fprintf(w, "Total records:        %d\n", s.TotalRecords)
	fmt.Fprintf(w, "Approved / rejected:  %d / %d (%.1f%% approval)\n", s.ApprovedLoans, s.RejectedLoans, s.ApprovalRate()*100)
	fmt.Fprintf(w, "Average income:       %.2f (median %.2f)\n", s.AverageIncome, s.MedianIncome)
	fmt.Fprintf(w, "Average coapplicant:  %.2f\n", s.AverageCoapplicantIncome)
	fmt.Fprintf(w, "Average loan amount:  %.2f\n", s.AverageLoanAmount)
	fmt.Fprintf(w, "Gender:               %s\n", assistant.Distribution(s.GenderDistribution))
	fmt.Fprintf(w, "Education:            %s\n", assistant.Distribution(s.EducationDistribution))
	fmt.Fprintf(w, "Property area:        %s\n", assistant.Distribution(s.PropertyAreaDistribution))
	fmt.Fprintf(w, "Credit history:       %s\n", assistant.Distribution(s.CreditHistoryDistribution))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
