package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactively generate a config.yaml file",
	RunE: func(cmd *cobra.Command, args []string) error {
		configFile := "config.yaml"

		force, _ := cmd.Flags().GetBool("force")
		if _, err := os.Stat(configFile); err == nil && !force {
			fmt.Printf("config.yaml already exists. Use --force to overwrite.\n")
			return nil
		}

		reader := bufio.NewReader(os.Stdin)

		fmt.Println("Let's set up your config.yaml!")

		fmt.Println("\n--- IMAP ---")
		imapServer := prompt(reader, "IMAP server (e.g. imap.gmail.com): ")
		imapPort := promptDefault(reader, "IMAP port", "993")
		imapSecurity := promptDefault(reader, "IMAP security (ssl/starttls/none)", "ssl")
		imapUser := prompt(reader, "IMAP username: ")
		imapPass := promptSecret(reader, "IMAP password: ")
		folder := promptDefault(reader, "Folder to triage", "INBOX")

		fmt.Println("\n--- CLASSIFIER ---")
		threshold := promptDefault(reader, "Spam probability threshold", "0.8")

		fmt.Println("\n--- REPORT (optional, leave recipients empty to skip) ---")
		recipients := promptMulti(reader, "Summary recipient email(s) (comma-separated): ")

		content := fmt.Sprintf(`imap:
  server: %s
  port: %s
  security: %s
  username: %s
  password: %q
  folder: %s

classifier:
  threshold: %s

poll:
  interval: 5m
  backoff: 60s
`, imapServer, imapPort, imapSecurity, imapUser, imapPass, folder, threshold)

		if len(recipients) > 0 {
			smtpServer := prompt(reader, "SMTP server (e.g. smtp.gmail.com): ")
			smtpPort := promptDefault(reader, "SMTP port", "465")
			smtpSecurity := promptDefault(reader, "SMTP security (ssl/starttls)", "ssl")
			smtpUser := promptDefault(reader, "SMTP username", imapUser)
			smtpPass := promptSecret(reader, "SMTP password (empty to reuse IMAP password): ")
			if smtpPass == "" {
				smtpPass = imapPass
			}

			content += fmt.Sprintf(`
report:
  to:
%s
  smtp:
    server: %s
    port: %s
    security: %s
    username: %s
    password: %q
`, yamlList("    - ", recipients), smtpServer, smtpPort, smtpSecurity, smtpUser, smtpPass)
		}

		if err := os.WriteFile(configFile, []byte(content), 0o600); err != nil {
			return fmt.Errorf("failed to write config.yaml: %w", err)
		}

		fmt.Println("\n✅ config.yaml created successfully.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().Bool("force", false, "Overwrite an existing config.yaml")
}

func prompt(r *bufio.Reader, label string) string {
	fmt.Print(label)
	text, _ := r.ReadString('\n')
	return strings.TrimSpace(text)
}

func promptDefault(r *bufio.Reader, label, def string) string {
	if v := prompt(r, fmt.Sprintf("%s [%s]: ", label, def)); v != "" {
		return v
	}
	return def
}

// promptSecret reads without echo when stdin is a terminal.
func promptSecret(r *bufio.Reader, label string) string {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return prompt(r, label)
	}

	fmt.Print(label)
	b, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

func promptMulti(r *bufio.Reader, label string) []string {
	raw := prompt(r, label)
	parts := strings.Split(raw, ",")
	var cleaned []string
	for _, s := range parts {
		s = strings.TrimSpace(s)
		if s != "" {
			cleaned = append(cleaned, s)
		}
	}
	return cleaned
}

func yamlList(prefix string, values []string) string {
	var lines []string
	for _, v := range values {
		lines = append(lines, fmt.Sprintf("%s%s", prefix, v))
	}
	return strings.Join(lines, "\n")
}
