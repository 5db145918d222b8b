package main

import (
	"fmt"
	"os"

	"clinic-go/internal/app"
	"clinic-go/internal/clinic"
	"clinic-go/internal/config"
	"clinic-go/internal/model"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates a ClinicApp. The caller must defer app.Close().
func newApp() (*app.ClinicApp, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewClinicApp(cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// short truncates an id for display. Ids are usually UUIDs, but
// caller-supplied ids can be arbitrarily short.
func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// promptPassword reads a password from the terminal without echoing it.
func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(b), nil
}

var rootCmd = &cobra.Command{
	Use:   "clinic",
	Short: "Clinic management service",
}

// config command

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Clinic:   %s\n", cfg.ClinicName)
		fmt.Printf("Base Dir: %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:  %s\n", cfg.LogDir)
		fmt.Printf("Database: %s (%s)\n", cfg.Database.Type, cfg.Database.DataDir)
		return nil
	},
}

// setup command

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-run setup: store clinic identity and create the admin user",
	RunE: func(cmd *cobra.Command, args []string) error {
		clinicName, _ := cmd.Flags().GetString("clinic")
		address, _ := cmd.Flags().GetString("address")
		email, _ := cmd.Flags().GetString("email")
		first, _ := cmd.Flags().GetString("first")
		last, _ := cmd.Flags().GetString("last")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		firstRun, err := a.IsFirstRun()
		if err != nil {
			return err
		}
		if !firstRun {
			return fmt.Errorf("setup has already completed")
		}

		password, err := promptPassword("Admin password: ")
		if err != nil {
			return err
		}

		admin, err := a.CompleteSetup(clinicName, address, clinic.CreateUserParams{
			Email:     email,
			Password:  password,
			Role:      "admin",
			FirstName: first,
			LastName:  last,
		})
		if err != nil {
			return fmt.Errorf("setup failed: %w", err)
		}

		fmt.Printf("Setup complete. Admin user: %s (%s)\n", admin.Email, admin.ID)
		return nil
	},
}

// login / logout commands

var loginCmd = &cobra.Command{
	Use:   "login EMAIL",
	Short: "Authenticate and go online",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		password, err := promptPassword("Password: ")
		if err != nil {
			return err
		}

		user, err := a.Authenticate(args[0], password)
		if err != nil {
			return err
		}

		sessionID := uuid.New().String()
		if err := a.SetOnline(user.ID, sessionID); err != nil {
			return err
		}

		fmt.Printf("Logged in as %s %s (%s)\n", user.FirstName, user.LastName, user.Role)
		fmt.Printf("User ID: %s\nSession: %s\n", user.ID, sessionID)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout USER_ID",
	Short: "Go offline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.SetOffline(args[0]); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	},
}

// user command

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		role, _ := cmd.Flags().GetString("role")
		first, _ := cmd.Flags().GetString("first")
		last, _ := cmd.Flags().GetString("last")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		password, err := promptPassword("Password: ")
		if err != nil {
			return err
		}

		user, err := a.CreateUser(clinic.CreateUserParams{
			Email:     email,
			Password:  password,
			Role:      role,
			FirstName: first,
			LastName:  last,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Created user %s (%s)\n", user.Email, user.ID)
		return nil
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users with presence",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		pairs, err := a.ListWithPresence()
		if err != nil {
			return err
		}

		if len(pairs) == 0 {
			fmt.Println("No users.")
			return nil
		}

		for _, up := range pairs {
			badge := " "
			if up.Presence.Status == model.StatusOnline {
				badge = "*"
			}
			fmt.Printf("%s %-30s %-10s %s %s\n", badge, up.User.Email, up.User.Role, up.User.FirstName, up.User.LastName)
		}
		return nil
	},
}

var userOnlineCmd = &cobra.Command{
	Use:   "online",
	Short: "List ids of online users",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ids, err := a.ListOnline()
		if err != nil {
			return err
		}

		if len(ids) == 0 {
			fmt.Println("Nobody is online.")
			return nil
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	},
}

// msg command

var msgCmd = &cobra.Command{
	Use:   "msg",
	Short: "Manage messages",
}

var msgSendCmd = &cobra.Command{
	Use:   "send SENDER_ID RECEIVER_ID BODY",
	Short: "Send a message",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		m, err := a.SendMessage(args[0], args[1], args[2])
		if err != nil {
			return err
		}
		fmt.Printf("Sent message %s\n", m.ID)
		return nil
	},
}

var msgListCmd = &cobra.Command{
	Use:   "list USER_ID OTHER_USER_ID",
	Short: "View a conversation",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		search, _ := cmd.Flags().GetString("search")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		msgs, err := a.GetConversation(args[0], args[1], search)
		if err != nil {
			return err
		}

		if len(msgs) == 0 {
			fmt.Println("No messages.")
			return nil
		}
		for _, m := range msgs {
			marker := " "
			if m.Status == model.MessageUnread {
				marker = "N"
			}
			fmt.Printf("%s %s  %s  %s: %s\n", marker, short(m.ID), m.CreatedAt.Format("2006-01-02 15:04"), short(m.SenderID), m.Body)
		}
		return nil
	},
}

var msgReadCmd = &cobra.Command{
	Use:   "read MESSAGE_ID READER_ID",
	Short: "Mark a message read",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ok, err := a.MarkMessageRead(args[0], args[1])
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("No matching message (not found, or you are not its receiver).")
			return nil
		}
		fmt.Println("Marked read.")
		return nil
	},
}

var msgRmCmd = &cobra.Command{
	Use:   "rm MESSAGE_ID SENDER_ID",
	Short: "Delete a message you sent",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ok, err := a.DeleteMessage(args[0], args[1])
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("No matching message (not found, or you are not its sender).")
			return nil
		}
		fmt.Println("Deleted.")
		return nil
	},
}

var msgUnreadCmd = &cobra.Command{
	Use:   "unread USER_ID",
	Short: "Count unread messages",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		count, err := a.UnreadCount(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%d unread message(s)\n", count)
		return nil
	},
}

// patient command

func patientParamsFromFlags(cmd *cobra.Command) clinic.PatientParams {
	businessID, _ := cmd.Flags().GetString("patient-id")
	first, _ := cmd.Flags().GetString("first")
	last, _ := cmd.Flags().GetString("last")
	dob, _ := cmd.Flags().GetString("dob")
	gender, _ := cmd.Flags().GetString("gender")
	contact, _ := cmd.Flags().GetString("contact")

	return clinic.PatientParams{
		PatientID:   businessID,
		FirstName:   first,
		LastName:    last,
		DateOfBirth: dob,
		Gender:      gender,
		Contact:     contact,
	}
}

func addPatientFlags(cmd *cobra.Command) {
	cmd.Flags().String("patient-id", "", "Business patient id (e.g. P-001)")
	cmd.Flags().String("first", "", "First name")
	cmd.Flags().String("last", "", "Last name")
	cmd.Flags().String("dob", "", "Date of birth (YYYY-MM-DD)")
	cmd.Flags().String("gender", "", "Gender")
	cmd.Flags().String("contact", "", "Contact details")
}

var patientCmd = &cobra.Command{
	Use:   "patient",
	Short: "Manage patient records",
}

var patientAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a patient record",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		p, err := a.CreatePatient(patientParamsFromFlags(cmd))
		if err != nil {
			return err
		}
		fmt.Printf("Created patient %s %s (%s)\n", p.FirstName, p.LastName, p.ID)
		return nil
	},
}

var patientListCmd = &cobra.Command{
	Use:   "list",
	Short: "List patients, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		search, _ := cmd.Flags().GetString("search")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		patients, err := a.ListPatients(search)
		if err != nil {
			return err
		}

		if len(patients) == 0 {
			fmt.Println("No patients found.")
			return nil
		}
		for _, p := range patients {
			fmt.Printf("%s  %-10s %-20s %s\n", short(p.ID), p.PatientID, p.LastName+", "+p.FirstName, p.DateOfBirth)
		}
		return nil
	},
}

var patientShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show a patient record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		p, err := a.GetPatient(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("ID:         %s\n", p.ID)
		fmt.Printf("Patient ID: %s\n", p.PatientID)
		fmt.Printf("Name:       %s %s\n", p.FirstName, p.LastName)
		fmt.Printf("DOB:        %s\n", p.DateOfBirth)
		fmt.Printf("Gender:     %s\n", p.Gender)
		fmt.Printf("Contact:    %s\n", p.Contact)
		fmt.Printf("Created:    %s\n", p.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("Updated:    %s\n", p.UpdatedAt.Format("2006-01-02 15:04:05"))
		return nil
	},
}

var patientUpdateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Replace a patient's demographic fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		p, err := a.UpdatePatient(args[0], patientParamsFromFlags(cmd))
		if err != nil {
			return err
		}
		fmt.Printf("Updated patient %s %s (%s)\n", p.FirstName, p.LastName, p.ID)
		return nil
	},
}

var patientRmCmd = &cobra.Command{
	Use:   "rm ID",
	Short: "Delete a patient record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ok, err := a.DeletePatient(args[0])
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("No such patient.")
			return nil
		}
		fmt.Println("Deleted.")
		return nil
	},
}

// setting command

var settingCmd = &cobra.Command{
	Use:   "setting",
	Short: "Manage persisted settings",
}

var settingGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Read a setting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		value, ok, err := a.GetSetting(args[0])
		if err != nil {
			return err
		}
		if !ok {
			fmt.Printf("Setting %q is not set.\n", args[0])
			return nil
		}
		fmt.Println(value)
		return nil
	},
}

var settingSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Write a setting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.SetSetting(args[0], args[1]); err != nil {
			return err
		}
		fmt.Println("Saved.")
		return nil
	},
}

// export command

var exportCmd = &cobra.Command{
	Use:   "export DEST",
	Short: "Export a copy of the record store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.ExportDatabase(args[0]); err != nil {
			return err
		}
		fmt.Printf("Exported to %s\n", args[0])
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// setup flags
	setupCmd.Flags().String("clinic", "", "Clinic name")
	setupCmd.Flags().String("address", "", "Clinic address")
	setupCmd.Flags().String("email", "", "Admin email")
	setupCmd.Flags().String("first", "", "Admin first name")
	setupCmd.Flags().String("last", "", "Admin last name")

	// user subcommands
	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userOnlineCmd)
	userCreateCmd.Flags().String("email", "", "Email address")
	userCreateCmd.Flags().String("role", "", "Role (admin, doctor, reception)")
	userCreateCmd.Flags().String("first", "", "First name")
	userCreateCmd.Flags().String("last", "", "Last name")

	// msg subcommands
	msgCmd.AddCommand(msgSendCmd)
	msgCmd.AddCommand(msgListCmd)
	msgCmd.AddCommand(msgReadCmd)
	msgCmd.AddCommand(msgRmCmd)
	msgCmd.AddCommand(msgUnreadCmd)
	msgListCmd.Flags().String("search", "", "Filter bodies by substring")

	// patient subcommands
	patientCmd.AddCommand(patientAddCmd)
	patientCmd.AddCommand(patientListCmd)
	patientCmd.AddCommand(patientShowCmd)
	patientCmd.AddCommand(patientUpdateCmd)
	patientCmd.AddCommand(patientRmCmd)
	addPatientFlags(patientAddCmd)
	addPatientFlags(patientUpdateCmd)
	patientListCmd.Flags().String("search", "", "Filter by name or patient id substring")

	// setting subcommands
	settingCmd.AddCommand(settingGetCmd)
	settingCmd.AddCommand(settingSetCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(msgCmd)
	rootCmd.AddCommand(patientCmd)
	rootCmd.AddCommand(settingCmd)
	rootCmd.AddCommand(exportCmd)
}
