// Schema commands: show a schema file and check stored elements against it.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/plycore/internal/schemafile"
	"github.com/mesh-intelligence/plycore/internal/sqlite"
	"github.com/mesh-intelligence/plycore/pkg/ply"
)

func newSchemaCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Inspect element schemas",
		Long: `Schema files declare element classes and their typed properties in
YAML, TOML or JSON, chosen by file extension:

  elements:
    - name: vertex
      count: 8
      properties:
        - {name: x, type: float}
        - {name: vertex_indices, type: list uchar int}`,
	}
	cmd.AddCommand(newSchemaShowCmd(a), newSchemaCheckCmd(a))
	return cmd
}

func newSchemaShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <file>",
		Short: "Print a schema in PLY header form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := schemafile.Load(args[0])
			if err != nil {
				return userError(err)
			}
			if a.jsonOut {
				return writeJSON(cmd.OutOrStdout(), s)
			}
			w := cmd.OutOrStdout()
			for _, el := range s.Elements {
				fmt.Fprintf(w, "element %s %d\n", el.Name, el.Count)
				for _, pd := range el.Properties {
					fmt.Fprintf(w, "property %s %s\n", pd.Type, pd.Name)
				}
			}
			return nil
		},
	}
}

func newSchemaCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check <file> <id>",
		Short: "Check a stored element against its class definition",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(b *sqlite.Backend) error {
				rec, err := b.Get(args[1])
				if err != nil {
					return storeError(err)
				}
				def, err := loadElementDef(args[0], rec.Class)
				if err != nil {
					return err
				}
				if err := ply.Check(def, rec.Element); err != nil {
					return userError(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s conforms to %s\n", rec.Class, rec.ID, args[0])
				return nil
			})
		},
	}
}

func newClassesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "classes",
		Short: "List the element classes in the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(b *sqlite.Backend) error {
				classes, err := b.Classes()
				if err != nil {
					return storeError(err)
				}
				if a.jsonOut {
					if classes == nil {
						classes = []string{}
					}
					return writeJSON(cmd.OutOrStdout(), classes)
				}
				for _, c := range classes {
					fmt.Fprintln(cmd.OutOrStdout(), c)
				}
				return nil
			})
		},
	}
}
