package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/lithammer/dedent"
	"github.com/raine/listing-wizard/internal/wizard"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	priceStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	cardStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(1, 2).
			Width(72)

	levelStyles = map[wizard.Level]lipgloss.Style{
		wizard.LevelInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		wizard.LevelSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		wizard.LevelError:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}
)

const (
	choiceAccept     = "accept"
	choiceEdit       = "edit"
	choiceRegenerate = "regenerate"
	choiceQuit       = "quit"
)

func newRootCmd() *cobra.Command {
	var (
		serverURL string
		timeout   time.Duration
		verbose   bool
	)

	cmd := &cobra.Command{
		Use:   "listing-wizard <image-path>",
		Short: "Generate a marketplace listing from a photo",
		Long: strings.TrimSpace(dedent.Dedent(`
			Generates a title, description and price for the item in the photo
			using a running listing server, then lets you review and edit them.
			The accepted listing is printed to stdout as JSON.
		`)),
		Args: cobra.ExactArgs(1),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SilenceUsage = true
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			level := zerolog.WarnLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)

			image, err := wizard.EncodeImageFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to load image: %w", err)
			}

			client := wizard.NewClient(wizard.ClientOpts{BaseURL: serverURL, Timeout: timeout})
			w := wizard.New(client, wizard.NotifierFunc(notify))
			w.UploadImage(image)

			state, ok := run(cmd.Context(), w)
			if !ok {
				return errors.New("no listing accepted")
			}

			out, err := json.MarshalIndent(state.Draft(), "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode listing: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().StringVarP(&serverURL, "server", "s", wizard.DefaultServerURL, "listing server base URL")
	cmd.Flags().DurationVar(&timeout, "timeout", 90*time.Second, "request timeout")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	return cmd
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		cancel()
		os.Exit(1)
	}
}

func notify(n wizard.Notification) {
	style := levelStyles[n.Level]
	fmt.Fprintln(os.Stderr, style.Render(n.Title+": ")+n.Message)
}

// run drives the session until the user accepts the listing or quits.
func run(ctx context.Context, w *wizard.Wizard) (wizard.State, bool) {
	if !generate(ctx, w) {
		return w.State(), false
	}

	for {
		state := w.State()
		fmt.Println(renderPreview(state))

		choice, err := askNextStep()
		if err != nil {
			return state, false
		}

		switch choice {
		case choiceAccept:
			return state, true
		case choiceEdit:
			if err := edit(w); err != nil {
				return w.State(), false
			}
		case choiceRegenerate:
			// A failed regeneration keeps the current listing
			generate(ctx, w)
		case choiceQuit:
			return state, false
		}
	}
}

// generate requests a listing, offering to retry after a failure. Returns
// false if the user gave up without a listing.
func generate(ctx context.Context, w *wizard.Wizard) bool {
	for {
		fmt.Fprintln(os.Stderr, labelStyle.Render("Generating listing..."))
		_, err := w.Generate(ctx)
		if err == nil {
			return true
		}
		if ctx.Err() != nil {
			return false
		}

		retry := true
		confirm := huh.NewConfirm().
			Title("Try again?").
			Value(&retry)
		if err := confirm.Run(); err != nil || !retry {
			return w.State().Mode == wizard.ModePreview
		}
	}
}

func askNextStep() (string, error) {
	var choice string
	err := huh.NewSelect[string]().
		Title("What next?").
		Options(
			huh.NewOption("Accept listing", choiceAccept),
			huh.NewOption("Edit fields", choiceEdit),
			huh.NewOption("Generate again", choiceRegenerate),
			huh.NewOption("Quit", choiceQuit),
		).
		Value(&choice).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return choiceQuit, nil
	}
	return choice, err
}

func edit(w *wizard.Wizard) error {
	state := w.Edit()
	title, description, price := state.Title, state.Description, state.Price

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(&title),
			huh.NewText().
				Title("Description").
				Value(&description),
			huh.NewInput().
				Title("Price ($)").
				Value(&price),
		),
	).WithTheme(huh.ThemeBase16())

	if err := form.Run(); err != nil {
		w.SaveEdit()
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		return err
	}

	w.Dispatch(wizard.Action{Type: wizard.SetTitle, Value: title})
	w.Dispatch(wizard.Action{Type: wizard.SetDescription, Value: description})
	w.Dispatch(wizard.Action{Type: wizard.SetPrice, Value: price})
	w.SaveEdit()
	return nil
}

func renderPreview(state wizard.State) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(state.Title))
	b.WriteString("\n\n")
	b.WriteString(state.Description)
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("Price: "))
	b.WriteString(priceStyle.Render("$" + state.Price))
	return cardStyle.Render(b.String())
}
