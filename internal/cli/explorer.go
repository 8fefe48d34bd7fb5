package cli

import (
	"fmt"
	"math"
	"path"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowboard/pkg/errors"
	"github.com/matzehuels/flowboard/pkg/explorer"
)

// newScriptTemplate seeds files created from the explorer.
const newScriptTemplate = `# Surfaces are placed with [[surface]], lines drawn with [[line]] and
# later edits replayed with [[step]].

[view]
scale = 1.0
`

var (
	explorerDirStyle  = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	explorerFileStyle = lipgloss.NewStyle().Foreground(colorWhite)
)

// explorerCommand creates the explorer command group for the project tree.
func (c *CLI) explorerCommand() *cobra.Command {
	var root string

	cmd := &cobra.Command{
		Use:     "explorer",
		Aliases: []string{"ex"},
		Short:   "Manage the project tree of diagram files",
		Long: `Manage the project tree of diagram files.

Directory arguments are relative to the project root; use "." for the root
itself. Each folder remembers the order its children were arranged in.`,
	}
	cmd.PersistentFlags().StringVar(&root, "root", "", "project root (default from settings)")

	storage := func() (*explorer.Storage, error) {
		dir := root
		if dir == "" {
			var err error
			if dir, err = c.Settings.ExplorerRoot(); err != nil {
				return nil, err
			}
		}
		s := explorer.New(dir)
		s.Logger = c.Logger
		if err := s.EnsureRoot(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "create project root")
		}
		return s, nil
	}

	cmd.AddCommand(explorerListCommand(storage))
	cmd.AddCommand(explorerNewCommand(storage))
	cmd.AddCommand(explorerMoveCommand(storage))
	cmd.AddCommand(explorerRenameCommand(storage))
	cmd.AddCommand(explorerRemoveCommand(storage))

	return cmd
}

type storageFunc func() (*explorer.Storage, error)

func explorerListCommand(open storageFunc) *cobra.Command {
	var recursive bool

	cmd := &cobra.Command{
		Use:   "ls [dir]",
		Short: "List a folder in its arranged order",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open()
			if err != nil {
				return err
			}
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			t, err := listTree(s, dir, recursive)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.String())
			return nil
		},
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "list subfolders too")
	return cmd
}

// listTree builds a tree of dir's children, descending into folders when
// recursive is set.
func listTree(s *explorer.Storage, dir string, recursive bool) (*tree.Tree, error) {
	entries, err := s.Children(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "list %s", dir)
	}
	t := tree.Root(explorerDirStyle.Render(dir)).Enumerator(tree.RoundedEnumerator)
	for _, e := range entries {
		if !e.IsDir {
			t.Child(explorerFileStyle.Render(e.Name))
			continue
		}
		if !recursive {
			t.Child(explorerDirStyle.Render(e.Name + "/"))
			continue
		}
		sub, err := listTree(s, path.Join(dir, e.Name), true)
		if err != nil {
			return nil, err
		}
		t.Child(sub.Root(explorerDirStyle.Render(e.Name + "/")))
	}
	return t, nil
}

func explorerNewCommand(open storageFunc) *cobra.Command {
	var folder, force bool
	var index int

	cmd := &cobra.Command{
		Use:   "new DIR NAME",
		Short: "Create a diagram file or folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open()
			if err != nil {
				return err
			}
			dir, name := args[0], args[1]
			var created string
			if folder {
				created, err = s.CreateFolder(dir, name, force)
			} else {
				created, err = s.CreateFile(dir, name, []byte(newScriptTemplate), force)
			}
			if err != nil {
				return err
			}
			if index >= 0 {
				if err := s.Move(dir, filepath.Base(created), index); err != nil {
					return err
				}
			}
			printSuccess("Created %s", name)
			printFile(created)
			return nil
		},
	}
	cmd.Flags().BoolVar(&folder, "folder", false, "create a folder instead of a file")
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing entry")
	cmd.Flags().IntVar(&index, "index", -1, "position in the folder (default last)")
	return cmd
}

func explorerMoveCommand(open storageFunc) *cobra.Command {
	var to string
	var index int
	var force bool

	cmd := &cobra.Command{
		Use:   "mv DIR NAME",
		Short: "Reorder an entry or move it to another folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open()
			if err != nil {
				return err
			}
			dst := to
			if dst == "" {
				dst = args[0]
			}
			moved, err := s.MoveEntry(args[0], args[1], dst, index, force)
			if err != nil {
				return err
			}
			printSuccess("Moved %s", args[1])
			printFile(moved)
			return nil
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "destination folder (default the same folder)")
	cmd.Flags().IntVar(&index, "index", math.MaxInt, "position in the destination (default last)")
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing entry")
	return cmd
}

func explorerRenameCommand(open storageFunc) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "rename DIR OLD NEW",
		Short: "Rename an entry in place",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open()
			if err != nil {
				return err
			}
			renamed, err := s.RenameEntry(args[0], args[1], args[2], force)
			if err != nil {
				return err
			}
			printSuccess("Renamed %s to %s", args[1], args[2])
			printFile(renamed)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing entry")
	return cmd
}

func explorerRemoveCommand(open storageFunc) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "rm DIR NAME",
		Short: "Delete an entry",
		Long: `Delete an entry.

Folders that hold anything are only deleted with --force.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open()
			if err != nil {
				return err
			}
			dir, name := args[0], args[1]
			if !force && s.HasUserContent(path.Join(dir, name)) {
				return errors.New(errors.ErrCodeInvalidInput, "%s is not empty; use --force to delete it", name)
			}
			if err := s.DeleteEntry(dir, name); err != nil {
				return err
			}
			printSuccess("Deleted %s", name)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "delete folders with content")
	return cmd
}
