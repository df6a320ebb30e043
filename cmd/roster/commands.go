package main

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"attendance/pkg/roster"
	"attendance/pkg/session"

	"github.com/spf13/cobra"
)

func parseNumber(arg string) (int, error) {
	no, err := strconv.Atoi(arg)
	if err != nil || no <= 0 {
		return 0, fmt.Errorf("invalid participant number %q", arg)
	}
	return no, nil
}

func newListCommand(opts *rootOptions) *cobra.Command {
	var sortMode string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the roster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withService(cmd, func(svc *roster.Service) error {
				r, stats, err := svc.View(cmd.Context(), roster.SortMode(sortMode))
				if err != nil {
					// Show what we have; the roster is empty if the read failed.
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
				}
				return writeRoster(cmd.OutOrStdout(), opts.Format, r, stats)
			})
		},
	}
	cmd.Flags().StringVarP(&sortMode, "sort", "s", string(roster.SortByNumber), "sort order (number|name|first|second)")
	return cmd
}

func newStatsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show attendance counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withService(cmd, func(svc *roster.Service) error {
				r, err := svc.Refresh(cmd.Context())
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
				}
				return writeStats(cmd.OutOrStdout(), opts.Format, roster.ComputeStats(r))
			})
		},
	}
}

func newAddCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add NAME",
		Short: "Add a participant",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withService(cmd, func(svc *roster.Service) error {
				_, p, err := svc.Add(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%sさんを追加しました (No. %d)\n", p.Name, p.Number)
				return nil
			})
		},
	}
}

func newEditCommand(opts *rootOptions) *cobra.Command {
	var first, second bool
	var comment string
	cmd := &cobra.Command{
		Use:   "edit NO",
		Short: "Set attendance and comment for a participant",
		Long:  "Set attendance and comment for a participant. Flags that are not given keep their current value.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			no, err := parseNumber(args[0])
			if err != nil {
				return err
			}
			var changes roster.Changes
			if cmd.Flags().Changed("first") {
				changes.FirstSession = &first
			}
			if cmd.Flags().Changed("second") {
				changes.SecondSession = &second
			}
			if cmd.Flags().Changed("comment") {
				changes.Comment = &comment
			}
			return opts.withService(cmd, func(svc *roster.Service) error {
				_, changed, err := svc.Patch(cmd.Context(), no, changes)
				if err != nil {
					return err
				}
				if changed {
					fmt.Fprintln(cmd.OutOrStdout(), "変更を保存しました")
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "変更はありません")
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&first, "first", false, "attended the first session")
	cmd.Flags().BoolVar(&second, "second", false, "attended the second session")
	cmd.Flags().StringVar(&comment, "comment", "", "free-text comment")
	return cmd
}

func newToggleCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle NO first|second",
		Short: "Flip attendance for one session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			no, err := parseNumber(args[0])
			if err != nil {
				return err
			}
			which, err := roster.ParseSessionNumber(args[1])
			if err != nil {
				return err
			}
			return opts.withService(cmd, func(svc *roster.Service) error {
				r, _, err := svc.Toggle(cmd.Context(), no, which)
				if err != nil {
					return err
				}
				p, _ := r.Find(no)
				attended := p.FirstSession
				if which == roster.SecondSession {
					attended = p.SecondSession
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d回目 %s\n", p.Name, which, attendanceMark(attended))
				return nil
			})
		},
	}
}

// newDeleteCommand asks for confirmation on stdin unless --yes is given.
func newDeleteCommand(opts *rootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete NO",
		Short: "Delete a participant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			no, err := parseNumber(args[0])
			if err != nil {
				return err
			}
			return opts.withService(cmd, func(svc *roster.Service) error {
				s := session.New()
				s.RequestDelete(no)
				if !yes {
					fmt.Fprintf(cmd.OutOrStdout(), "Delete participant %d? [y/N] ", no)
					answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
					answer = strings.ToLower(strings.TrimSpace(answer))
					if answer != "y" && answer != "yes" {
						s.Cancel(no)
					}
				}
				if !s.Confirm(no) {
					fmt.Fprintln(cmd.OutOrStdout(), "キャンセルしました")
					return nil
				}
				_, changed, err := svc.Delete(cmd.Context(), no)
				s.Reset()
				if err != nil {
					return err
				}
				if changed {
					fmt.Fprintln(cmd.OutOrStdout(), "削除しました")
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "participant %d was not on the roster\n", no)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
