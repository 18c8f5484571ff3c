package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-resty/resty/v2"
	"github.com/raine/listing-wizard/config"
	"golang.org/x/term"
)

const (
	openAIAPIBaseURL = "https://api.openai.com/v1"
	geminiAPIBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	keyCheckTimeout  = 10 * time.Second
)

// isInteractiveTerminal reports whether both stdin and stdout are TTYs.
func isInteractiveTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// runSetupWizard asks for the provider and its API key and writes them to
// the config file. Returns true if the server should continue starting.
func runSetupWizard() bool {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		MarginBottom(1)

	fmt.Println()
	fmt.Println(titleStyle.Render("Listing Wizard - First-time Setup"))
	fmt.Println()

	provider := os.Getenv("LLM_PROVIDER")
	if provider == "" {
		provider = config.ProviderOpenAI
	}
	var apiKey string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Completion provider").
				Options(
					huh.NewOption("OpenAI", config.ProviderOpenAI),
					huh.NewOption("Google Gemini", config.ProviderGemini),
				).
				Value(&provider),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("API Key").
				Description("OpenAI: https://platform.openai.com/api-keys\nGemini: https://aistudio.google.com/apikey").
				EchoMode(huh.EchoModePassword).
				Value(&apiKey).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("API key is required")
					}
					return validateAPIKey(newKeyCheckClient(), provider, s)
				}),
		),
	).WithTheme(huh.ThemeBase16())

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("\nSetup cancelled.")
			return false
		}
		fmt.Printf("\nError: %v\n", err)
		return false
	}

	values := map[string]string{
		"LLM_PROVIDER":                    provider,
		config.CredentialEnvVar(provider): apiKey,
	}

	configPath, err := config.SaveEnvFile(values)
	if err != nil {
		fmt.Printf("\nError saving configuration: %v\n", err)
		waitOnWindows()
		return false
	}

	for k, v := range values {
		os.Setenv(k, v)
	}

	successStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("42")).
		Bold(true)
	pathStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245"))

	fmt.Println()
	fmt.Println(successStyle.Render("✓ Configuration saved"))
	fmt.Println(pathStyle.Render("  " + configPath))
	fmt.Println()
	fmt.Println("Starting server...")
	fmt.Println()

	return true
}

type keyCheckClient struct {
	http      *resty.Client
	openAIURL string
	geminiURL string
}

func newKeyCheckClient() *keyCheckClient {
	return &keyCheckClient{
		http:      resty.New().SetTimeout(keyCheckTimeout),
		openAIURL: openAIAPIBaseURL,
		geminiURL: geminiAPIBaseURL,
	}
}

type apiErrorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// validateAPIKey checks the key against the provider's model list endpoint,
// which is cheap and requires authentication.
func validateAPIKey(c *keyCheckClient, provider, key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), keyCheckTimeout)
	defer cancel()

	var errBody apiErrorBody
	req := c.http.R().SetContext(ctx).SetError(&errBody)

	var res *resty.Response
	var err error
	if provider == config.ProviderGemini {
		res, err = req.SetQueryParam("key", key).Get(c.geminiURL + "/models")
	} else {
		res, err = req.SetAuthToken(key).Get(c.openAIURL + "/models")
	}
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return errors.New("connection timed out - check your internet")
		}
		return errors.New("connection failed - check your internet")
	}

	switch res.StatusCode() {
	case http.StatusOK:
		return nil
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
		if errBody.Error.Message != "" {
			return errors.New(errBody.Error.Message)
		}
		return fmt.Errorf("API key rejected (HTTP %d)", res.StatusCode())
	default:
		return fmt.Errorf("unexpected response (HTTP %d)", res.StatusCode())
	}
}
