package cli

import (
	"fmt"
	"math"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/reoring/formskema"
	"github.com/reoring/formskema/codec"
	"github.com/reoring/formskema/internal/demo"
	"github.com/reoring/formskema/source"
)

func (a *app) validateCmd() *cobra.Command {
	var schemaName, output string
	cmd := &cobra.Command{
		Use:   "validate FILE...",
		Short: "Validate documents against a schema",
		Long: `Decodes each JSON or YAML file (by extension), converts RFC 3339 strings at
Date fields and prints the error tree. Exits with status 1 when any document
is invalid.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.schema(schemaName)
			if err != nil {
				return err
			}
			invalid := 0
			for _, path := range args {
				model, err := source.ReadFile(path)
				if err != nil {
					return err
				}
				tree, err := s.Validate(cmd.Context(), codec.DecodeDates(s, model))
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				a.logger.Info("validated", zap.String("file", path), zap.Int("error_keys", len(tree)))
				if len(tree) > 0 {
					invalid++
				}
				if err := a.printTree(path, s, tree, output); err != nil {
					return err
				}
			}
			if invalid > 0 {
				return fmt.Errorf("%w: %d of %d", ErrInvalid, invalid, len(args))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&schemaName, "schema", "s", "company", "schema name")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format (text, json, yaml)")
	return cmd
}

func (a *app) defaultsCmd() *cobra.Command {
	var schemaName, output string
	cmd := &cobra.Command{
		Use:   "defaults",
		Short: "Print the default model of a schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.schema(schemaName)
			if err != nil {
				return err
			}
			return a.print(printable(s.DefaultValues()), output)
		},
	}
	cmd.Flags().StringVarP(&schemaName, "schema", "s", "company", "schema name")
	cmd.Flags().StringVarP(&output, "output", "o", "json", "output format (json, yaml)")
	return cmd
}

func (a *app) schemasCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schemas",
		Short: "List the built-in schemas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range demo.Names() {
				s, err := a.schema(name)
				if err != nil {
					return err
				}
				fields := make([]string, 0)
				for _, k := range s.Keys() {
					fields = append(fields, k+":"+formskema.TypeName(s.Field(k).Type))
				}
				fmt.Fprintf(a.out, "%s\t%s\n", name, strings.Join(fields, " "))
			}
			return nil
		},
	}
}

func (a *app) printTree(path string, s *formskema.Schema, tree formskema.Tree, output string) error {
	if output != "text" {
		return a.print(map[string]any{"file": path, "errors": tree}, output)
	}
	if len(tree) == 0 {
		fmt.Fprintf(a.out, "%s: ok\n", path)
		return nil
	}
	for _, is := range s.Issues(tree) {
		fmt.Fprintf(a.out, "%s: %s: %s\n", path, is.Path, is.Message)
	}
	return nil
}

func (a *app) print(v any, output string) error {
	var (
		b   []byte
		err error
	)
	switch output {
	case "json":
		b, err = json.MarshalIndent(v, "", "  ")
		b = append(b, '\n')
	case "yaml":
		b, err = yaml.Marshal(v)
	default:
		return fmt.Errorf("unknown output format %q", output)
	}
	if err != nil {
		return err
	}
	_, err = a.out.Write(b)
	return err
}

// printable replaces values JSON cannot carry (NaN) and renders dates in
// RFC 3339.
func printable(v any) any {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) {
			return nil
		}
	case time.Time:
		return codec.FormatRFC3339(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = printable(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = printable(e)
		}
		return out
	}
	return v
}
