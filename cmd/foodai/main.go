package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/foodai/foodai-web/internal/analysis"
	"github.com/foodai/foodai-web/internal/client"
	"golang.org/x/term"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	apiURL := "http://localhost:8080"
	if envURL := os.Getenv("API_URL"); envURL != "" {
		apiURL = envURL
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "waitlist":
		err = waitlistCmd(ctx, apiURL, args)
	case "sign-up":
		err = signUpCmd(ctx, apiURL, args)
	case "preferences":
		err = preferencesCmd(ctx, apiURL, args)
	case "dashboard":
		err = dashboardCmd(ctx, apiURL, args)
	case "forgot-password":
		err = forgotPasswordCmd(ctx, apiURL, args)
	case "scan":
		err = scanCmd(ctx, args)
	case "health":
		err = client.NewAPIClient(apiURL).Health(ctx)
		if err == nil {
			fmt.Println("OK")
		}
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`foodai - command line client for the FoodAI web API

USAGE:
  foodai <command> [options]

COMMANDS:
  waitlist         Join the launch waitlist
  sign-up          Create an account
  preferences      Show or update dietary preferences
  dashboard        Show the signed-in dashboard
  forgot-password  Request a password reset link
  scan             Analyze a photo of an ingredient list
  health           Check that the API is up
  help             Show this help message

ENVIRONMENT:
  API_URL          Backend API URL (default: http://localhost:8080)
  FOODAI_PASSWORD  Password to use instead of prompting

EXAMPLES:
  foodai waitlist --email=me@example.com
  foodai sign-up --email=me@example.com
  foodai preferences --email=me@example.com
  foodai preferences --email=me@example.com --diet=keto,lowCarb --allergy=nuts --custom="no cilantro"
  foodai scan --file=label.jpg`)
}

func waitlistCmd(ctx context.Context, apiURL string, args []string) error {
	fs := flag.NewFlagSet("waitlist", flag.ExitOnError)
	email := fs.String("email", "", "Email address (required)")
	fs.Parse(args)

	if *email == "" {
		return fmt.Errorf("--email is required")
	}

	form := client.NewWaitlistForm(client.NewAPIClient(apiURL))
	form.SetEmail(*email)
	err := form.Submit(ctx)
	_, msg := form.Status()
	fmt.Println(msg)
	if err != nil {
		os.Exit(1)
	}
	return nil
}

func signUpCmd(ctx context.Context, apiURL string, args []string) error {
	fs := flag.NewFlagSet("sign-up", flag.ExitOnError)
	email := fs.String("email", "", "Email address (required)")
	fs.Parse(args)

	if *email == "" {
		return fmt.Errorf("--email is required")
	}
	password, err := readPassword("Password: ")
	if err != nil {
		return err
	}

	user, err := client.NewAPIClient(apiURL).SignUp(ctx, *email, password)
	if err != nil {
		return err
	}
	fmt.Printf("Account created for %s (id: %s)\n", user.Email, user.ID)
	return nil
}

func preferencesCmd(ctx context.Context, apiURL string, args []string) error {
	fs := flag.NewFlagSet("preferences", flag.ExitOnError)
	email := fs.String("email", "", "Account email (required)")
	diet := fs.String("diet", "", "Comma separated diet goals to select")
	allergy := fs.String("allergy", "", "Comma separated allergies to select")
	custom := fs.String("custom", "", "Free text preferences")
	fs.Parse(args)

	api, err := signIn(ctx, apiURL, *email)
	if err != nil {
		return err
	}

	form := client.NewPreferencesForm(api)
	if err := form.Load(ctx); err != nil {
		return err
	}

	if !isSet(fs, "diet") && !isSet(fs, "allergy") && !isSet(fs, "custom") {
		printPreferences(form.Values())
		return nil
	}

	current := form.Values()
	if isSet(fs, "diet") {
		for _, g := range current.DietGoals {
			form.SetDietGoal(g, false)
		}
		for _, g := range splitList(*diet) {
			form.SetDietGoal(g, true)
		}
	}
	if isSet(fs, "allergy") {
		for _, a := range current.Allergies {
			form.SetAllergy(a, false)
		}
		for _, a := range splitList(*allergy) {
			form.SetAllergy(a, true)
		}
	}
	if isSet(fs, "custom") {
		form.SetCustomPreferences(*custom)
	}

	err = form.Submit(ctx)
	_, msg := form.Status()
	fmt.Println(msg)
	if err != nil {
		os.Exit(1)
	}
	printPreferences(form.Values())
	return nil
}

func dashboardCmd(ctx context.Context, apiURL string, args []string) error {
	fs := flag.NewFlagSet("dashboard", flag.ExitOnError)
	email := fs.String("email", "", "Account email (required)")
	fs.Parse(args)

	api, err := signIn(ctx, apiURL, *email)
	if err != nil {
		return err
	}
	dash, err := api.Dashboard(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Signed in as %s (member since %s)\n\n", dash.User.Email, dash.User.CreatedAt.Format("2006-01-02"))
	printPreferences(dash.Preferences)

	fmt.Println("\nAvailable diet goals:")
	for _, o := range dash.DietGoalOptions {
		fmt.Printf("  %-12s %s\n", o.ID, o.Label)
	}
	fmt.Println("Available allergies:")
	for _, o := range dash.AllergyOptions {
		fmt.Printf("  %-12s %s\n", o.ID, o.Label)
	}
	return nil
}

func forgotPasswordCmd(ctx context.Context, apiURL string, args []string) error {
	fs := flag.NewFlagSet("forgot-password", flag.ExitOnError)
	email := fs.String("email", "", "Account email (required)")
	fs.Parse(args)

	if *email == "" {
		return fmt.Errorf("--email is required")
	}
	res, err := client.NewAPIClient(apiURL).ForgotPassword(ctx, *email)
	if err != nil {
		return err
	}
	fmt.Println(res.Message)
	return nil
}

func scanCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	file := fs.String("file", "", "Image file to analyze (required)")
	delay := fs.Duration("delay", analysis.DefaultMockDelay, "Simulated analysis time")
	fs.Parse(args)

	if *file == "" {
		return fmt.Errorf("--file is required")
	}
	data, err := os.ReadFile(*file)
	if err != nil {
		return err
	}

	scan := client.NewPhotoScan(&analysis.Mock{Delay: *delay})
	photo, err := scan.Select(data)
	if err != nil {
		return err
	}
	fmt.Printf("Selected %s (%s, %d bytes)\n", *file, photo.MIMEType, len(photo.Data))

	fmt.Print("Analyzing... ")
	start := time.Now()
	res, err := scan.Analyze(ctx)
	if err != nil {
		fmt.Println("FAILED")
		return err
	}
	fmt.Printf("done in %s\n\n", time.Since(start).Round(time.Millisecond))

	printGroup("Safe", res.Safe)
	printGroup("Moderate", res.Moderate)
	printGroup("Harmful", res.Harmful)
	printGroup("Matches your preferences", res.Matches)
	return nil
}

func signIn(ctx context.Context, apiURL, email string) (*client.APIClient, error) {
	if email == "" {
		return nil, fmt.Errorf("--email is required")
	}
	password, err := readPassword("Password: ")
	if err != nil {
		return nil, err
	}
	api := client.NewAPIClient(apiURL)
	if _, err := api.SignIn(ctx, email, password); err != nil {
		return nil, err
	}
	return api, nil
}

// readPassword prefers FOODAI_PASSWORD, then prompts without echo on a
// terminal, then reads a line from stdin.
func readPassword(prompt string) (string, error) {
	if pw := os.Getenv("FOODAI_PASSWORD"); pw != "" {
		return pw, nil
	}

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, prompt)
		pw, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(pw), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func printPreferences(p client.Preferences) {
	fmt.Printf("Diet goals:  %s\n", orNone(p.DietGoals))
	fmt.Printf("Allergies:   %s\n", orNone(p.Allergies))
	if p.CustomPreferences != "" {
		fmt.Printf("Other:       %s\n", p.CustomPreferences)
	}
}

func printGroup(title string, items []string) {
	fmt.Printf("%s:\n", title)
	for _, item := range items {
		fmt.Printf("  - %s\n", item)
	}
}

func orNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func isSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
