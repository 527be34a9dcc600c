package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"student-analyzer/internal/auth"
)

// NewTeacherCodeCmd prints the verification code a teacher signs up with.
func NewTeacherCodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "teacher-code <name>",
		Short: "Print the teacher verification code for a name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(strings.Join(args, " "))
			code := auth.TeacherCode(name)
			if code == "" {
				return fmt.Errorf("name is required")
			}
			fmt.Fprintln(cmd.OutOrStdout(), code)
			return nil
		},
	}
}
