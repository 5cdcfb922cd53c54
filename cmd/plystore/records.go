// Element store commands: put, get, list and delete.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/plycore/internal/schemafile"
	"github.com/mesh-intelligence/plycore/internal/sqlite"
	"github.com/mesh-intelligence/plycore/pkg/ply"
)

// recordJSON is the --json form of a stored record.
type recordJSON struct {
	ID         string              `json:"id"`
	Class      string              `json:"class"`
	CreatedAt  time.Time           `json:"created_at"`
	Properties *ply.DefaultElement `json:"properties"`
}

func toRecordJSON(r *sqlite.Record) recordJSON {
	return recordJSON{ID: r.ID, Class: r.Class, CreatedAt: r.CreatedAt, Properties: r.Element}
}

// storeError classifies errors returned by the store.
func storeError(err error) error {
	if errors.Is(err, sqlite.ErrNotFound) || errors.Is(err, sqlite.ErrInvalidClass) {
		return userError(err)
	}
	return sysError(err)
}

// loadElementDef reads the schema at path and returns the definition of
// class.
func loadElementDef(path, class string) (ply.ElementDef, error) {
	s, err := schemafile.Load(path)
	if err != nil {
		return ply.ElementDef{}, userError(err)
	}
	def, ok := s.Element(class)
	if !ok {
		return ply.ElementDef{}, userError(fmt.Errorf("schema %s declares no element %q", path, class))
	}
	return def, nil
}

func writeJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return sysError(fmt.Errorf("marshal output: %w", err))
	}
	fmt.Fprintln(w, string(out))
	return nil
}

func writeRecord(w io.Writer, r *sqlite.Record) error {
	fmt.Fprintf(w, "%s %s\n", r.Class, r.ID)
	if err := writeElement(w, r.Element); err != nil {
		return sysError(err)
	}
	return nil
}

func newPutCmd(a *app) *cobra.Command {
	var (
		props      []string
		id         string
		schemaPath string
	)
	cmd := &cobra.Command{
		Use:   "put <class>",
		Short: "Store an element",
		Long: `Put stores an element of the given class. Each --prop gives one
property as name=type:value, where type is a scalar keyword (char, uchar,
short, ushort, int, uint, float, double or a sized alias such as float32)
or "list <scalar>". List values are comma-separated.

With --id an existing element is replaced in place. With --schema the
element is checked against the class definition first.

Example:
  plystore put vertex --prop x=float:1.5 --prop y=float:0 --prop z=float:-2
  plystore put face --prop "vertex_indices=list int:0,1,2" --schema cube.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			class := args[0]
			e, err := buildElement(props)
			if err != nil {
				return userError(err)
			}
			if schemaPath != "" {
				def, err := loadElementDef(schemaPath, class)
				if err != nil {
					return err
				}
				if err := ply.Check(def, e); err != nil {
					return userError(err)
				}
			}

			return a.withStore(func(b *sqlite.Backend) error {
				stored, err := b.Put(class, id, e)
				if err != nil {
					return storeError(err)
				}
				a.logger.Debug("element stored", "class", class, "id", stored, "properties", e.Len())
				if a.jsonOut {
					return writeJSON(cmd.OutOrStdout(), map[string]string{"id": stored})
				}
				fmt.Fprintln(cmd.OutOrStdout(), stored)
				return nil
			})
		},
	}
	cmd.Flags().StringArrayVarP(&props, "prop", "p", nil, "property as name=type:value (repeatable)")
	cmd.Flags().StringVar(&id, "id", "", "element id (default: generated)")
	cmd.Flags().StringVar(&schemaPath, "schema", "", "schema file to check the element against")
	return cmd
}

func newGetCmd(a *app) *cobra.Command {
	var schemaPath string
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show an element by ID",
		Long: `Get prints a stored element. With --schema only the properties the
class declares are printed, in declaration order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(b *sqlite.Backend) error {
				rec, err := b.Get(args[0])
				if err != nil {
					return storeError(err)
				}
				if schemaPath != "" {
					def, err := loadElementDef(schemaPath, rec.Class)
					if err != nil {
						return err
					}
					projected, err := project(def, rec.Element)
					if err != nil {
						return userError(err)
					}
					rec.Element = projected
				}
				if a.jsonOut {
					return writeJSON(cmd.OutOrStdout(), toRecordJSON(rec))
				}
				return writeRecord(cmd.OutOrStdout(), rec)
			})
		},
	}
	cmd.Flags().StringVar(&schemaPath, "schema", "", "schema file selecting the properties to show")
	return cmd
}

// project copies the properties def declares from e, in declaration order.
func project(def ply.ElementDef, e *ply.DefaultElement) (*ply.DefaultElement, error) {
	out := ply.NewDefaultElement()
	if err := ply.Copy(out, e, def); err != nil {
		if errors.Is(err, ply.ErrPropertyAbsent) {
			// Copy reports a wrong variant as absent; Check tells them apart.
			if cerr := ply.Check(def, e); cerr != nil {
				return nil, cerr
			}
		}
		return nil, err
	}
	return out, nil
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list [class]",
		Short: "List stored elements",
		Long: `List prints the stored elements of a class in insertion order. Without
a class it lists every element.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var class string
			if len(args) == 1 {
				class = args[0]
			}
			return a.withStore(func(b *sqlite.Backend) error {
				recs, err := b.Fetch(class)
				if err != nil {
					return storeError(err)
				}
				if a.jsonOut {
					out := make([]recordJSON, len(recs))
					for i, r := range recs {
						out[i] = toRecordJSON(r)
					}
					return writeJSON(cmd.OutOrStdout(), out)
				}
				for _, r := range recs {
					if err := writeRecord(cmd.OutOrStdout(), r); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an element by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(b *sqlite.Backend) error {
				if err := b.Delete(args[0]); err != nil {
					return storeError(err)
				}
				a.logger.Debug("element deleted", "id", args[0])
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return nil
			})
		},
	}
}
