package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"commitgen/cli/internal/backend"
	"commitgen/cli/internal/config"
	"commitgen/cli/internal/erruser"
	"commitgen/cli/internal/generator"
	"commitgen/cli/internal/git"
	"commitgen/cli/internal/message"
	"commitgen/cli/internal/ollama"
	"commitgen/cli/internal/trace"
	"commitgen/cli/internal/version"
)

// errExit is an error that carries an exit code for the CLI. Use errors.As to detect it.
type errExit int

func (e errExit) Error() string {
	return "exit " + strconv.Itoa(int(e))
}

// dryRunMessage is injected instead of a model call under --dry-run so CI
// can exercise the full flow without a backend.
const dryRunMessage = "chore: update project files"

// messageOut is the writer for the generated message on success. Tests may replace it to capture output.
var defaultGetMessageOut = func() io.Writer { return os.Stdout }
var getMessageOut = defaultGetMessageOut

// messageWriter returns the writer for message output, or os.Stdout if getMessageOut() returns nil.
// It never returns nil; callers may assume a non-nil writer.
func messageWriter() io.Writer {
	w := getMessageOut()
	if w == nil {
		return os.Stdout
	}
	return w
}

// confirmIn is the reader for interactive confirmation. Tests may replace it.
var confirmIn io.Reader = os.Stdin

func main() {
	os.Exit(Run())
}

// Run is the entry point for the CLI. It is exported for testing so that
// main.go can meet per-file coverage requirements.
func Run() int {
	return runCLI(os.Args[1:])
}

func runCLI(args []string) int {
	rootCmd := &cobra.Command{
		Use:     "commitgen",
		Short:   "AI-assisted git commit message generator",
		Version: version.String(),
		Args:    cobra.NoArgs,
		RunE:    runGenerate,
	}
	addGenerateFlags(rootCmd)
	rootCmd.Flags().Bool("validate", false, "Check the generated message against length and format policy")
	rootCmd.Flags().Bool("suggest", false, "Print advisory suggestions (missing tests, docs, breaking changes)")
	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newCommitCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		var exitErr errExit
		if errors.As(err, &exitErr) {
			return int(exitErr)
		}
		fmt.Fprintln(os.Stderr, err)
		if u := errors.Unwrap(err); u != nil {
			fmt.Fprintf(os.Stderr, "Details: %v\n", u)
		}
		return 1
	}
	return 0
}

// addGenerateFlags registers the flags shared by generate and commit.
func addGenerateFlags(cmd *cobra.Command) {
	cmd.Flags().String("provider", "", "Backend provider: ollama or openai (overrides config and env)")
	cmd.Flags().String("model", "", "Model name (overrides config and env)")
	cmd.Flags().String("format", "", "Message format: conventional, simple, or detailed (overrides config and env)")
	cmd.Flags().Int("max-length", 0, "First-line character budget (0 = use config)")
	cmd.Flags().Int("max-diff-length", 0, "Diff truncation budget in characters (0 = use config)")
	cmd.Flags().Duration("timeout", 0, "Backend timeout, e.g. 90s or 5m (0 = use config)")
	cmd.Flags().Bool("staged-only", false, "Use only the staged diff; do not fall back to the working tree")
	cmd.Flags().Bool("dry-run", false, "Skip the model; emit a canned message for CI")
	cmd.Flags().BoolP("quiet", "q", false, "Suppress token-budget warnings")
	cmd.Flags().Bool("trace", false, "Print internal steps to stderr (prompt, raw response, processed message)")
}

// overridesFromFlags returns Overrides for the generation flags that were
// explicitly set (generate and commit both define these flags).
func overridesFromFlags(cmd *cobra.Command) *config.Overrides {
	o := &config.Overrides{}
	changed := false
	if f := cmd.Flags().Lookup("provider"); f != nil && f.Changed {
		v, _ := cmd.Flags().GetString("provider")
		o.Provider = &v
		changed = true
	}
	if f := cmd.Flags().Lookup("model"); f != nil && f.Changed {
		v, _ := cmd.Flags().GetString("model")
		o.Model = &v
		changed = true
	}
	if f := cmd.Flags().Lookup("format"); f != nil && f.Changed {
		v, _ := cmd.Flags().GetString("format")
		o.Format = &v
		changed = true
	}
	if f := cmd.Flags().Lookup("max-length"); f != nil && f.Changed {
		v, _ := cmd.Flags().GetInt("max-length")
		o.MaxLength = &v
		changed = true
	}
	if f := cmd.Flags().Lookup("max-diff-length"); f != nil && f.Changed {
		v, _ := cmd.Flags().GetInt("max-diff-length")
		o.MaxDiffLength = &v
		changed = true
	}
	if f := cmd.Flags().Lookup("timeout"); f != nil && f.Changed {
		v, _ := cmd.Flags().GetDuration("timeout")
		o.Timeout = &v
		changed = true
	}
	if !changed {
		return nil
	}
	return o
}

// repoVCS adapts the git package to the generator's VCS collaborator.
type repoVCS struct {
	root string
}

func (v repoVCS) Status(ctx context.Context) (*git.Snapshot, error) {
	return git.Status(ctx, v.root)
}

func (v repoVCS) Diff(ctx context.Context, staged bool) (string, error) {
	return git.Diff(ctx, v.root, staged)
}

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a commit message from the current changes",
		RunE:  runGenerate,
	}
	addGenerateFlags(cmd)
	cmd.Flags().Bool("validate", false, "Check the generated message against length and format policy")
	cmd.Flags().Bool("suggest", false, "Print advisory suggestions (missing tests, docs, breaking changes)")
	return cmd
}

// runPipeline is the shared generation path for generate and commit. It
// returns the result alongside the loaded config so callers can validate,
// suggest, or commit with the same settings.
func runPipeline(cmd *cobra.Command) (*generator.Result, *config.Config, string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, nil, "", erruser.New("Could not determine current directory.", err)
	}
	repoRoot, err := git.RepoRoot(cwd)
	if err != nil {
		return nil, nil, "", err
	}
	cfg, err := config.Load(config.LoadOptions{RepoRoot: repoRoot, Overrides: overridesFromFlags(cmd)})
	if err != nil {
		return nil, nil, "", err
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	quiet, _ := cmd.Flags().GetBool("quiet")
	stagedOnly, _ := cmd.Flags().GetBool("staged-only")
	traceOn, _ := cmd.Flags().GetBool("trace")

	var b backend.Backend
	if dryRun {
		b = backend.Canned("dry-run", dryRunMessage)
	} else {
		b, err = backend.New(cfg)
		if err != nil {
			return nil, nil, "", err
		}
	}
	var tracer *trace.Tracer
	if traceOn {
		tracer = trace.New(os.Stderr)
	}
	var warnOut io.Writer
	if !quiet {
		warnOut = os.Stderr
	}
	g := generator.New(repoVCS{root: repoRoot}, b, tracer, warnOut)

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
	defer cancel()
	res, err := g.Generate(ctx, generator.Options{
		Gen:           cfg.GenOptions(),
		StagedOnly:    stagedOnly,
		ContextLimit:  cfg.ContextLimit,
		WarnThreshold: cfg.WarnThreshold,
	})
	if err != nil {
		return nil, nil, "", pipelineExitError(err, cfg)
	}
	return res, cfg, repoRoot, nil
}

// pipelineExitError maps pipeline failures to exit codes and hints.
func pipelineExitError(err error, cfg *config.Config) error {
	if errors.Is(err, generator.ErrNoChanges) || errors.Is(err, generator.ErrConflicts) {
		fmt.Fprintln(os.Stderr, err.Error())
		return errExit(1)
	}
	if errors.Is(err, ollama.ErrUnreachable) {
		fmt.Fprintf(os.Stderr, "Ollama unreachable at %s. Is the server running? For local: ollama serve.\n", cfg.OllamaBaseURL)
		fmt.Fprintf(os.Stderr, "Details: %v\n", err)
		return errExit(2)
	}
	return err
}

// printFindings writes validation findings to w, one per line.
func printFindings(w io.Writer, r message.ValidationResult) {
	for _, e := range r.Errors {
		fmt.Fprintf(w, "error: %s\n", e)
	}
	for _, wmsg := range r.Warnings {
		fmt.Fprintf(w, "warning: %s\n", wmsg)
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	res, cfg, _, err := runPipeline(cmd)
	if err != nil {
		return err
	}
	fmt.Fprintln(messageWriter(), res.Message)

	doSuggest, _ := cmd.Flags().GetBool("suggest")
	if doSuggest {
		for _, s := range message.Suggest(res.Message, res.Status, res.Diff) {
			fmt.Fprintf(os.Stderr, "%s: %s\n", s.Type, s.Message)
		}
	}
	doValidate, _ := cmd.Flags().GetBool("validate")
	if doValidate {
		r := message.Validate(res.Message, cfg.Format)
		printFindings(os.Stderr, r)
		if !r.Valid {
			return errExit(1)
		}
	}
	return nil
}

func newCommitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Generate a commit message and commit the staged changes",
		RunE:  runCommit,
	}
	addGenerateFlags(cmd)
	cmd.Flags().BoolP("add", "a", false, "Stage all changes (git add -A) before generating")
	cmd.Flags().BoolP("yes", "y", false, "Commit without confirmation")
	return cmd
}

func runCommit(cmd *cobra.Command, args []string) error {
	addAll, _ := cmd.Flags().GetBool("add")
	if addAll {
		cwd, err := os.Getwd()
		if err != nil {
			return erruser.New("Could not determine current directory.", err)
		}
		repoRoot, err := git.RepoRoot(cwd)
		if err != nil {
			return err
		}
		if err := git.Add(cmd.Context(), repoRoot); err != nil {
			return err
		}
	}

	res, _, repoRoot, err := runPipeline(cmd)
	if err != nil {
		return err
	}
	fmt.Fprintln(messageWriter(), res.Message)

	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		fmt.Fprint(os.Stderr, "Commit with this message? [y/N] ")
		line, err := bufio.NewReader(confirmIn).ReadString('\n')
		if err != nil && err != io.EOF {
			return erruser.New("Could not read confirmation.", err)
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		if answer != "y" && answer != "yes" {
			fmt.Fprintln(os.Stderr, "Aborted.")
			return nil
		}
	}

	sha, err := git.Commit(cmd.Context(), repoRoot, res.Message)
	if err != nil {
		return err
	}
	if len(sha) > 7 {
		sha = sha[:7]
	}
	fmt.Fprintf(os.Stderr, "Committed %s\n", sha)
	return nil
}

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [message]",
		Short: "Check a commit message against length and format policy",
		Long: `Check a commit message against length and format policy. The message is
taken from the argument, or read from stdin when no argument is given
(e.g. as a commit-msg hook: commitgen validate < "$1").

Exits 1 when the message has errors; warnings never fail the check.`,
		RunE: runValidate,
	}
	cmd.Flags().String("format", "", "Message format to check against: conventional, simple, or detailed")
	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	var msg string
	if len(args) > 0 {
		msg = args[0]
	} else {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return erruser.New("Could not read message from stdin.", err)
		}
		msg = string(data)
	}
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return errors.New("validate requires a message argument or stdin input")
	}

	cwd, err := os.Getwd()
	if err != nil {
		return erruser.New("Could not determine current directory.", err)
	}
	repoRoot := ""
	if r, e := git.RepoRoot(cwd); e == nil {
		repoRoot = r
	}
	cfg, err := config.Load(config.LoadOptions{RepoRoot: repoRoot, Overrides: overridesFromFlags(cmd)})
	if err != nil {
		return err
	}

	r := message.Validate(msg, cfg.Format)
	printFindings(os.Stdout, r)
	if !r.Valid {
		return errExit(1)
	}
	fmt.Fprintln(os.Stdout, "OK")
	return nil
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify the configured backend (Ollama server and model, or OpenAI key)",
		RunE:  runCheck,
	}
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return erruser.New("Could not determine current directory.", err)
	}
	repoRoot := ""
	if r, e := git.RepoRoot(cwd); e == nil {
		repoRoot = r
	}
	cfg, err := config.Load(config.LoadOptions{RepoRoot: repoRoot})
	if err != nil {
		return err
	}

	switch cfg.Provider {
	case config.ProviderOpenAI:
		key, err := cfg.ResolveAPIKey()
		if err != nil {
			return err
		}
		if key == "" {
			fmt.Fprintln(os.Stderr, "No OpenAI API key configured. Run 'commitgen config set-key' or set OPENAI_API_KEY.")
			return errExit(1)
		}
		fmt.Fprintln(os.Stdout, "OpenAI key OK")
		fmt.Fprintf(os.Stdout, "Model: %s\n", cfg.EffectiveModel())
		return nil
	default:
		client := ollama.NewClient(cfg.OllamaBaseURL, nil)
		result, err := client.Check(cmd.Context(), cfg.EffectiveModel())
		if err != nil {
			if errors.Is(err, ollama.ErrUnreachable) {
				fmt.Fprintf(os.Stderr, "Ollama unreachable at %s. Is the server running? For local: ollama serve.\n", cfg.OllamaBaseURL)
				fmt.Fprintf(os.Stderr, "Details: %v\n", err)
				return errExit(2)
			}
			fmt.Fprintln(os.Stderr, err.Error())
			return errExit(1)
		}
		if !result.ModelPresent {
			fmt.Fprintf(os.Stderr, "Model %q not found. Pull it with: ollama pull %s\n", cfg.EffectiveModel(), cfg.EffectiveModel())
			return errExit(1)
		}
		fmt.Fprintln(os.Stdout, "Ollama OK")
		fmt.Fprintf(os.Stdout, "Model: %s\n", cfg.EffectiveModel())
		return nil
	}
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read and write the global configuration",
		Long: `Read and write the global configuration file. Settable keys:
  ` + strings.Join(config.SettableKeys(), ", ") + `

The OpenAI API key is stored in the OS keychain, not the config file; use
'commitgen config set-key'.`,
	}
	cmd.AddCommand(newConfigGetCmd())
	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigUnsetCmd())
	cmd.AddCommand(newConfigSetKeyCmd())
	return cmd
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print a configuration value from the global config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.GlobalConfigPath()
			if err != nil {
				return err
			}
			value, ok, err := config.Get(path, args[0])
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(os.Stdout, "(unset)")
				return nil
			}
			fmt.Fprintln(os.Stdout, value)
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value in the global config file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.GlobalConfigPath()
			if err != nil {
				return err
			}
			return config.Set(path, args[0], args[1])
		},
	}
}

func newConfigUnsetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unset <key>",
		Short: "Remove a configuration value from the global config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.GlobalConfigPath()
			if err != nil {
				return err
			}
			return config.Unset(path, args[0])
		},
	}
}

func newConfigSetKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-key",
		Short: "Store the OpenAI API key in the OS keychain",
		RunE:  runConfigSetKey,
	}
}

// runConfigSetKey reads the key without echo when stdin is a terminal, so
// the key does not land in shell history or scrollback. Piped input is read
// as a single line for scripts.
func runConfigSetKey(cmd *cobra.Command, args []string) error {
	var key string
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, "OpenAI API key: ")
		data, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return erruser.New("Could not read API key.", err)
		}
		key = string(data)
	} else {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && err != io.EOF {
			return erruser.New("Could not read API key.", err)
		}
		key = line
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("set-key requires a non-empty API key")
	}
	if err := config.SaveAPIKey(key); err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "API key saved to the OS keychain.")
	return nil
}
