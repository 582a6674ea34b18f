package cmd

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/taskdeck/taskdeck/internal/config"
	"github.com/taskdeck/taskdeck/internal/service"
	"github.com/taskdeck/taskdeck/internal/session"
)

// loginCommand exchanges credentials for a token and stores the session.
func loginCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskdeck login", flag.ContinueOnError)
	email := fs.String("email", "", "Account email")
	password := fs.String("password", "", "Account password")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if *email == "" {
		*email = promptLine("Email: ")
	}
	if *password == "" {
		*password = promptLine("Password: ")
	}
	if *email == "" || *password == "" {
		return fmt.Errorf("email and password are required")
	}

	id, err := a.client.Login(ctx, service.Credentials{Email: *email, Password: *password})
	if err != nil {
		return err
	}
	a.saveSession(id)
	fmt.Printf("Logged in as %s\n", id.Email)
	return nil
}

// logoutCommand discards the stored session, locally only.
func logoutCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskdeck logout", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	path, err := session.DefaultPath()
	if err != nil {
		return fmt.Errorf("resolving session path: %w", err)
	}
	if err := session.RemoveFile(path); err != nil {
		return fmt.Errorf("removing session: %w", err)
	}
	fmt.Println("Logged out.")
	return nil
}

// registerCommand creates an account. It does not log the user in; the
// server only confirms creation.
func registerCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskdeck register", flag.ContinueOnError)
	email := fs.String("email", "", "Account email")
	password := fs.String("password", "", "Account password")
	name := fs.String("name", "", "Display name")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if *email == "" {
		*email = promptLine("Email: ")
	}
	if *password == "" {
		*password = promptLine("Password: ")
	}
	if *email == "" || *password == "" {
		return fmt.Errorf("email and password are required")
	}
	if *name == "" {
		*name = promptLine("Name (optional): ")
	}

	reg := service.Registration{Email: *email, Password: *password, Name: *name}
	if err := a.client.Register(ctx, reg); err != nil {
		return err
	}
	fmt.Printf("Registered %s. Run 'taskdeck login' to sign in.\n", *email)
	return nil
}

// promptLine reads one line from stdin, empty on EOF.
func promptLine(prompt string) string {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return ""
	}
	return strings.TrimSpace(line)
}
