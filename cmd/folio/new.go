package main

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/spf13/cobra"

	"github.com/eringen/folio/scaffold"
)

var newCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Create a new site directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runNew(scaffold.Templates, args[0], ".", cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(newCmd)
}

// scaffoldData holds the template variables passed to every scaffold template.
type scaffoldData struct {
	ProjectName string
	SiteName    string
}

// dotfiles are stored without the leading dot so embed and editors keep them visible.
var dotfiles = map[string]string{
	"dotenv":    ".env.example",
	"gitignore": ".gitignore",
}

func runNew(tmpls fs.FS, name, parent string, out io.Writer) error {
	dirName := path.Base(filepath.ToSlash(name))
	if dirName == "." || dirName == "/" || dirName == ".." {
		return fmt.Errorf("invalid project name %q", name)
	}
	dest := filepath.Join(parent, dirName)
	if _, err := os.Stat(dest); err == nil {
		return fmt.Errorf("directory %q already exists", dirName)
	}

	data := scaffoldData{
		ProjectName: dirName,
		SiteName:    toTitle(dirName),
	}

	fmt.Fprintf(out, "Creating new folio site: %s\n\n", dirName)

	const root = "templates"
	err := fs.WalkDir(tmpls, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(p, root), "/")
		outPath := filepath.Join(dest, filepath.FromSlash(rel))

		if d.IsDir() {
			return os.MkdirAll(outPath, 0o755)
		}

		raw, err := fs.ReadFile(tmpls, p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		if strings.HasSuffix(outPath, ".tmpl") {
			outPath = strings.TrimSuffix(outPath, ".tmpl")
			raw, err = execute(p, raw, data)
			if err != nil {
				return err
			}
		}
		if dot, ok := dotfiles[filepath.Base(outPath)]; ok {
			outPath = filepath.Join(filepath.Dir(outPath), dot)
		}

		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(outPath, raw, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", outPath, err)
		}
		fmt.Fprintf(out, "  created %s\n", outPath)
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Done! Next steps:")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  cd %s\n", dirName)
	fmt.Fprintln(out, "  cp .env.example .env")
	fmt.Fprintln(out, "  folio serve")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Add images under public/Pictures/<collection>/ and pages under content/.")
	fmt.Fprintln(out, "Set ADMIN_PASSWORD and ADMIN_SESSION_SECRET in .env to enable /admin/.")
	return nil
}

func execute(name string, raw []byte, data scaffoldData) ([]byte, error) {
	tmpl, err := template.New(path.Base(name)).Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return nil, fmt.Errorf("execute template %s: %w", name, err)
	}
	return []byte(b.String()), nil
}

// toTitle converts a hyphenated or lowercase name to a title-case string.
// e.g. "my-photos" -> "My Photos", "portfolio" -> "Portfolio"
func toTitle(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '_' })
	for i, p := range parts {
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
