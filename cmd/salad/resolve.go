package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/saladtools/salad"
	"github.com/saladtools/salad/doctree"
)

type ResolveOptions struct {
	Format string
}

func NewResolveOptions() *ResolveOptions {
	return &ResolveOptions{}
}

func NewResolveCmd(o *ResolveOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve [path or URL]",
		Short: "Resolve a document: $import, $include, $base and namespace prefixes",
		Args:  cobra.ExactArgs(1),
		RunE:  func(_ *cobra.Command, args []string) error { return o.Run(args[0]) },
	}
	cmd.Flags().StringVar(&o.Format, "format", "yaml", "Output format (yaml or json)")
	return cmd
}

func (o *ResolveOptions) Run(path string) error {
	uri := path
	if !strings.Contains(path, "://") {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		uri = salad.FileURI(abs, false)
	}

	opts := salad.NewLoadingOptions(salad.LoadingOptionsSpec{
		Warn: func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, "salad: Warning: "+format+"\n", args...)
		},
	})
	result, _, err := salad.LoadDocumentWithMetadata(documentResolver{}, uri, "", opts)
	if err != nil {
		return err
	}

	switch o.Format {
	case "yaml":
		out, err := yaml.Marshal(doctree.Plain(result))
		if err != nil {
			return err
		}
		fmt.Fprint(os.Stdout, string(out))
	case "json":
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, string(out))
	default:
		return fmt.Errorf("unknown output format %q", o.Format)
	}
	return nil
}

// documentResolver walks a document tree without schema knowledge, resolving
// $import and $include directives wherever they appear.
type documentResolver struct{}

func (documentResolver) Name() string { return "document" }

func (r documentResolver) Load(doc any, baseURI string, opts *salad.LoadingOptions, st salad.State) (any, error) {
	switch d := doc.(type) {
	case *doctree.Map:
		out := doctree.NewMap()
		for _, k := range d.Keys() {
			v, err := salad.LoadField(d.Value(k), r, baseURI, opts, st.Child(k))
			if err != nil {
				return nil, err
			}
			out.Set(k, v)
		}
		return out, nil
	case *doctree.Seq:
		out := make([]any, 0, d.Len())
		for i, item := range d.Items() {
			v, err := salad.LoadField(item, r, baseURI, opts, st.Child(i))
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case []any:
		out := make([]any, 0, len(d))
		for i, item := range d {
			v, err := salad.LoadField(item, r, baseURI, opts, st.Child(i))
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	default:
		return d, nil
	}
}
