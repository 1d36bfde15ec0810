package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zots0127/locker/internal/domain/entities"
)

func NewGroupsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "Manage groups without going through the HTTP API",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List groups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openContainer(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			groups, err := c.groups.List(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCREATED\tFOLDER")
			for _, g := range groups {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", g.ID, g.Name, g.CreatedAt.Format(entities.TimestampLayout), g.Folder)
			}
			return w.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "create <name>",
		Short: "Create a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openContainer(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			group, err := c.groups.Create(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created group %q (id %s)\n", group.Name, group.ID)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a group and all of its files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openContainer(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			if err := c.groups.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted group %q\n", args[0])
			return nil
		},
	})

	return cmd
}

func openContainer(cmd *cobra.Command) (*container, error) {
	manager, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	cfg := manager.GetConfig()
	// the CLI never holds sessions
	cfg.Session.Backend = "memory"
	return newContainer(cmd.Context(), cfg)
}
