package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/geosick/geosick/internal/store"
)

var (
	profileName     string
	profilePhone    string
	profileEmail    string
	profileDOB      string
	profileGender   string
	profilePlace    string
	profileLanguage string

	historyLimit int
	historyClear bool
)

// profileCmd represents the profile command
var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or update the local profile",
	Long: `Show the locally stored profile, or update fields with flags. The
profile never leaves this machine; its language preference becomes
the default response language.

Example:
  geosick profile
  geosick profile --name "Asha" --place "Mumbai" --profile-language hi-IN`,
	Args: cobra.NoArgs,
	RunE: runProfile,
}

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past analyses",
	Long: `List recorded analyses, newest first. Past results are stored
locally so they can be reviewed without new upstream calls.

Example:
  geosick history
  geosick history --limit 5
  geosick history --clear`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(historyCmd)

	profileCmd.Flags().StringVar(&profileName, "name", "", "display name")
	profileCmd.Flags().StringVar(&profilePhone, "phone", "", "phone number")
	profileCmd.Flags().StringVar(&profileEmail, "email", "", "email address")
	profileCmd.Flags().StringVar(&profileDOB, "date-of-birth", "", "date of birth (YYYY-MM-DD)")
	profileCmd.Flags().StringVar(&profileGender, "gender", "", "gender")
	profileCmd.Flags().StringVar(&profilePlace, "place", "", "home place")
	profileCmd.Flags().StringVar(&profileLanguage, "profile-language", "", "preferred response language")

	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum entries to show")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "delete all recorded history")
}

func runProfile(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}

	profile, err := s.Profile()
	if errors.Is(err, store.ErrNoProfile) {
		profile = &store.Profile{}
	} else if err != nil {
		return err
	}

	updated := false
	apply := func(dst *string, v string) {
		if v != "" {
			*dst = v
			updated = true
		}
	}
	apply(&profile.Name, profileName)
	apply(&profile.Phone, profilePhone)
	apply(&profile.Email, profileEmail)
	apply(&profile.DateOfBirth, profileDOB)
	apply(&profile.Gender, profileGender)
	apply(&profile.Place, profilePlace)
	apply(&profile.Language, profileLanguage)

	if updated {
		if err := s.SaveProfile(profile); err != nil {
			return err
		}
		fmt.Println("Profile updated.")
		fmt.Println()
	} else if profile.Name == "" {
		fmt.Println("No profile saved yet. Set fields with flags, e.g.:")
		fmt.Println("  geosick profile --name \"Asha\" --place \"Mumbai\"")
		return nil
	}

	if asJSON {
		return printJSON(profile)
	}
	fmt.Printf("Name:     %s\n", profile.Name)
	if profile.Phone != "" {
		fmt.Printf("Phone:    %s\n", profile.Phone)
	}
	if profile.Email != "" {
		fmt.Printf("Email:    %s\n", profile.Email)
	}
	if profile.DateOfBirth != "" {
		fmt.Printf("Born:     %s\n", profile.DateOfBirth)
	}
	if profile.Gender != "" {
		fmt.Printf("Gender:   %s\n", profile.Gender)
	}
	if profile.Place != "" {
		fmt.Printf("Place:    %s\n", profile.Place)
	}
	if profile.Language != "" {
		fmt.Printf("Language: %s\n", profile.Language)
	}
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}

	if historyClear {
		if err := s.ClearHistory(); err != nil {
			return err
		}
		fmt.Println("History cleared.")
		return nil
	}

	entries, err := s.History(historyLimit)
	if err != nil {
		return err
	}

	if asJSON {
		return printJSON(entries)
	}
	if len(entries) == 0 {
		fmt.Println("No recorded activity.")
		return nil
	}
	for _, e := range entries {
		fmt.Printf("%s  %-22s  %s\n", e.Timestamp.Local().Format("2006-01-02 15:04"), e.Kind, e.Title)
	}
	return nil
}
