package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sudokatie/whisper/cryptokernel"
	"github.com/sudokatie/whisper/store"
)

var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Manage groups",
}

var groupCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new group owned by this node",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		st, eng, _, err := openSession()
		if err != nil {
			return err
		}
		defer st.Close()

		key, err := cryptokernel.GenerateGroupKey()
		if err != nil {
			return err
		}

		g := store.Group{
			GroupID:      uuid.NewString(),
			Name:         name,
			Members:      []string{eng.SelfNodeID()},
			SymmetricKey: key,
			CreatedAt:    time.Now(),
		}
		if err := st.CreateGroup(g); err != nil {
			return err
		}

		fmt.Printf("Created group %q (%s)\n", name, g.GroupID)
		return nil
	},
}

var groupInviteCmd = &cobra.Command{
	Use:   "invite <name> <alias>",
	Short: "Invite a contact to a group, sharing its symmetric key",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, alias := args[0], args[1]

		st, eng, tr, err := openSession()
		if err != nil {
			return err
		}
		defer st.Close()

		group, err := st.GetGroupByName(name)
		if err != nil {
			return fmt.Errorf("group %q not found", name)
		}
		contact, err := st.GetContactByAlias(alias)
		if err != nil {
			return fmt.Errorf("contact %q not found", alias)
		}

		ctx, addr, stop, err := runSession(eng, tr)
		if err != nil {
			return err
		}
		defer stop()
		fmt.Printf("Listening on %s\n", addr)

		if err := eng.Invite(ctx, group.GroupID, contact.NodeID); err != nil {
			return err
		}

		fmt.Printf("Invited %s to group %q\n", alias, name)
		return nil
	},
}

var groupChatCmd = &cobra.Command{
	Use:   "chat <name>",
	Short: "Start an interactive chat session with a group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Interactive group chat not yet implemented")
		return nil
	},
}

var groupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known groups",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, _, err := openSession()
		if err != nil {
			return err
		}
		defer st.Close()

		groups, err := st.ListGroups()
		if err != nil {
			return err
		}
		if len(groups) == 0 {
			fmt.Println("No groups yet. Create one with: whisper group create <name>")
			return nil
		}

		for _, g := range groups {
			fmt.Printf("  %s (%s) - %d members\n", g.Name, g.GroupID, len(g.Members))
		}
		return nil
	},
}

func init() {
	groupCmd.AddCommand(groupCreateCmd, groupInviteCmd, groupChatCmd, groupListCmd)
	rootCmd.AddCommand(groupCmd)
}
