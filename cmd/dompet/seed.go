package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dompet/internal/services"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the default income and expense categories",
		Long: `Create the default category set for a user. Categories the user already
has (same name and type, ignoring case) are left alone, so seeding twice is safe.`,
		Args: cobra.NoArgs,
		RunE: runSeed,
	}
}

func runSeed(cmd *cobra.Command, _ []string) error {
	userID, err := requireUser()
	if err != nil {
		return err
	}

	db, _, closeDB, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB()

	created, err := services.NewCategoryService(db).SeedDefaultCategories(cmd.Context(), userID)
	if err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(created) == 0 {
		fmt.Fprintln(out, subtleStyle.Render("all default categories already exist"))
		return nil
	}
	for _, c := range created {
		fmt.Fprintf(out, "%s %-20s %s\n", c.Icon, c.Name, subtleStyle.Render(string(c.Type)))
	}
	fmt.Fprintf(out, "created %d categories\n", len(created))
	return nil
}
