// Package cli implements the formskema command line.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/reoring/formskema"
	"github.com/reoring/formskema/i18n"
	"github.com/reoring/formskema/internal/demo"
)

// ErrInvalid is returned by validate when a document has errors.
var ErrInvalid = errors.New("document is invalid")

type app struct {
	out      io.Writer
	logLevel string
	lang     string
	catalog  string
	logger   *zap.Logger
}

// NewRootCommand builds the formskema command tree writing results to out.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, logger: zap.NewNop()}
	root := &cobra.Command{
		Use:           "formskema",
		Short:         "Validate JSON and YAML documents against formskema schemas",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := newLogger(a.logLevel, errOut)
			if err != nil {
				return err
			}
			a.logger = l
			return nil
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&a.lang, "lang", "en", "message language ("+fmt.Sprint(i18n.Languages())+")")
	root.PersistentFlags().StringVar(&a.catalog, "messages", "", "YAML message catalog overriding the language catalog")

	root.AddCommand(a.validateCmd(), a.defaultsCmd(), a.schemasCmd(), a.serveCmd())
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	err := NewRootCommand(os.Stdout, os.Stderr).Execute()
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrInvalid):
		return 1
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	return 2
}

func newLogger(level string, w io.Writer) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level: %w", err)
	}
	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.AddSync(w), lvl)
	return zap.New(core), nil
}

func (a *app) schema(name string, opts ...formskema.Option) (*formskema.Schema, error) {
	msgs := i18n.Messages(a.lang)
	if a.catalog != "" {
		f, err := os.Open(a.catalog)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		over, err := i18n.LoadYAML(f)
		if err != nil {
			return nil, err
		}
		msgs = msgs.With(over)
	}
	return demo.Lookup(name, append([]formskema.Option{formskema.WithMessages(msgs), formskema.WithLogger(a.logger)}, opts...)...)
}
