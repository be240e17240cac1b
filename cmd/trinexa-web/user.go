package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/trinexa/trinexa-web/internal/config"
	"github.com/trinexa/trinexa-web/internal/web/db"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "User management commands",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new user",
	RunE:  runUserCreate,
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users",
	RunE:  runUserList,
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete [email]",
	Short: "Delete a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserDelete,
}

var userResetPasswordCmd = &cobra.Command{
	Use:   "reset-password [email]",
	Short: "Reset user password",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserResetPassword,
}

var (
	userEmail    string
	userPassword string
	userName     string
	userAdmin    bool
)

func init() {
	userCreateCmd.Flags().StringVar(&userEmail, "email", "", "User email")
	userCreateCmd.Flags().StringVar(&userPassword, "password", "", "User password (will prompt if not provided)")
	userCreateCmd.Flags().StringVar(&userName, "name", "", "User name")
	userCreateCmd.Flags().BoolVar(&userAdmin, "admin", false, "Grant the admin role")
	userCreateCmd.MarkFlagRequired("email")

	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userDeleteCmd)
	userCmd.AddCommand(userResetPasswordCmd)

	userCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "/etc/trinexa/web.yaml", "Path to configuration file")
}

func openDatabase() (*db.DB, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	database, err := db.New(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	return database, nil
}

func promptPassword() (string, error) {
	fmt.Print("Enter password: ")
	pwBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Println()

	fmt.Print("Confirm password: ")
	pwBytes2, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Println()

	if string(pwBytes) != string(pwBytes2) {
		return "", fmt.Errorf("passwords do not match")
	}
	return string(pwBytes), nil
}

func runUserCreate(cmd *cobra.Command, args []string) error {
	database, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	password := userPassword
	if password == "" {
		password, err = promptPassword()
		if err != nil {
			return err
		}
	}

	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	role := "user"
	if userAdmin {
		role = "admin"
	}

	id := uuid.New().String()
	_, err = database.Exec(
		"INSERT INTO users (id, email, password_hash, name, role) VALUES (?, ?, ?, ?, ?)",
		id, userEmail, string(hash), userName, role,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return fmt.Errorf("user with email %s already exists", userEmail)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Printf("User %s created with role %s\n", userEmail, role)
	return nil
}

func runUserList(cmd *cobra.Command, args []string) error {
	database, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	rows, err := database.Query("SELECT id, email, name, role, created_at FROM users ORDER BY created_at")
	if err != nil {
		return err
	}
	defer rows.Close()

	fmt.Printf("%-36s  %-30s  %-20s  %-6s  %s\n", "ID", "Email", "Name", "Role", "Created")
	fmt.Println(strings.Repeat("-", 108))

	for rows.Next() {
		var id, email, role, createdAt string
		var name *string
		if err := rows.Scan(&id, &email, &name, &role, &createdAt); err != nil {
			return err
		}
		nameStr := ""
		if name != nil {
			nameStr = *name
		}
		fmt.Printf("%-36s  %-30s  %-20s  %-6s  %s\n", id, email, nameStr, role, createdAt)
	}

	return rows.Err()
}

func runUserDelete(cmd *cobra.Command, args []string) error {
	email := args[0]

	database, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	fmt.Printf("Are you sure you want to delete user %s? [y/N]: ", email)
	reader := bufio.NewReader(os.Stdin)
	response, _ := reader.ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))

	if response != "y" && response != "yes" {
		fmt.Println("Cancelled")
		return nil
	}

	result, err := database.Exec("DELETE FROM users WHERE email = ?", email)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("user %s not found", email)
	}

	fmt.Printf("User %s deleted\n", email)
	return nil
}

func runUserResetPassword(cmd *cobra.Command, args []string) error {
	email := args[0]

	database, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	var id string
	if err := database.QueryRow("SELECT id FROM users WHERE email = ?", email).Scan(&id); err != nil {
		return fmt.Errorf("user %s not found", email)
	}

	password, err := promptPassword()
	if err != nil {
		return err
	}

	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	_, err = database.Exec(
		"UPDATE users SET password_hash = ?, updated_at = datetime('now') WHERE email = ?",
		string(hash), email,
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	fmt.Printf("Password for %s updated successfully\n", email)
	return nil
}
