package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"recipe-assistant/internal/model"
	"recipe-assistant/internal/share"
	"recipe-assistant/internal/templating"
	"recipe-assistant/pkg/fsutils"
)

// lazyGenerator defers building the generator until a recipe is requested,
// so commands that only read the collection work without an API key.
type lazyGenerator struct {
	env *cliEnv
}

func (g lazyGenerator) Generate(ctx context.Context, dish string, difficulty model.Difficulty, wishes string) (model.Recipe, error) {
	client, err := g.env.generator()
	if err != nil {
		return model.Recipe{}, err
	}
	return client.Generate(ctx, dish, difficulty, wishes)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newGenerateCmd(env *cliEnv) *cobra.Command {
	var difficulty, wishes string
	var save bool

	cmd := &cobra.Command{
		Use:   "generate <dish>",
		Short: "Generate a recipe for a dish",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := model.ParseDifficulty(difficulty)
			if err != nil {
				return err
			}
			recipe, err := env.manager.Generate(cmd.Context(), strings.Join(args, " "), level, wishes)
			if err != nil {
				return err
			}
			if save {
				if err := env.manager.SaveCurrent(); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if env.jsonOutput {
				return writeJSON(out, recipe)
			}
			fmt.Fprintln(out, renderRecipe(recipe))
			if save {
				fmt.Fprintln(out, passStyle.Render(iconPass+" Saved "+recipe.Name))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&difficulty, "difficulty", "d", string(model.DifficultyEasy), "Difficulty: easy, medium or hard")
	cmd.Flags().StringVarP(&wishes, "wishes", "w", "", "Additional wishes, e.g. vegetarian")
	cmd.Flags().BoolVar(&save, "save", false, "Save the generated recipe")
	return cmd
}

func newListCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved recipes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			recipes, err := env.manager.List()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if env.jsonOutput {
				return writeJSON(out, recipes)
			}
			fmt.Fprintln(out, renderList(recipes))
			return nil
		},
	}
}

func newShowCmd(env *cliEnv) *cobra.Command {
	var markdown bool
	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Show a saved recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recipe, err := env.manager.View(args[0])
			if err != nil {
				return fmt.Errorf("%q: %w", args[0], err)
			}
			out := cmd.OutOrStdout()
			switch {
			case env.jsonOutput:
				return writeJSON(out, recipe)
			case markdown:
				_, err := io.WriteString(out, share.Text(recipe))
				return err
			}
			fmt.Fprintln(out, renderRecipe(recipe))
			return nil
		},
	}
	cmd.Flags().BoolVar(&markdown, "markdown", false, "Print the share text instead")
	return cmd
}

func newEditCmd(env *cliEnv) *cobra.Command {
	var (
		name, description, image string
		ingredients, steps       []string
	)
	cmd := &cobra.Command{
		Use:   "edit <name>",
		Short: "Edit a saved recipe",
		Long:  "Edit a saved recipe. Fields whose flags are not given keep their current value.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			original, err := env.manager.View(args[0])
			if err != nil {
				return fmt.Errorf("%q: %w", args[0], err)
			}

			fields := model.EditFields{
				Name:             original.Name,
				Description:      original.Description,
				IngredientsText:  strings.Join(original.Ingredients, "\n"),
				InstructionsText: strings.Join(original.Instructions, "\n"),
				ImageURL:         original.ImageURL,
			}
			flags := cmd.Flags()
			if flags.Changed("name") {
				fields.Name = name
			}
			if flags.Changed("description") {
				fields.Description = description
			}
			if flags.Changed("ingredient") {
				fields.IngredientsText = strings.Join(ingredients, "\n")
			}
			if flags.Changed("step") {
				fields.InstructionsText = strings.Join(steps, "\n")
			}
			if flags.Changed("image") {
				fields.ImageURL = image
			}

			edited, err := env.manager.CommitEdit(original.Name, fields)
			if err != nil {
				return err
			}
			if env.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), edited)
			}
			fmt.Fprintln(cmd.OutOrStdout(), passStyle.Render(iconPass+" Updated "+edited.Name))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "New recipe name")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringArrayVar(&ingredients, "ingredient", nil, "Ingredient (repeat for each one, replaces the list)")
	cmd.Flags().StringArrayVar(&steps, "step", nil, "Instruction step (repeat for each one, replaces the list)")
	cmd.Flags().StringVar(&image, "image", "", "Image URL, empty to remove")
	return cmd
}

func newDeleteCmd(env *cliEnv) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a saved recipe (the name must match exactly)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if !yes {
				fmt.Fprintf(cmd.OutOrStdout(), "Delete %q? [y/N]: ", name)
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				answer = strings.ToLower(strings.TrimSpace(answer))
				if answer != "y" && answer != "yes" {
					fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("Cancelled."))
					return nil
				}
			}
			before, err := env.manager.Count()
			if err != nil {
				return err
			}
			if err := env.manager.Delete(name); err != nil {
				return err
			}
			after, err := env.manager.Count()
			if err != nil {
				return err
			}
			if after == before {
				// Delete matches exactly; a different case removes nothing.
				fmt.Fprintln(cmd.OutOrStdout(), warnStyle.Render(fmt.Sprintf("%s No saved recipe is named exactly %q", iconWarn, name)))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), passStyle.Render(fmt.Sprintf("%s Deleted %s (%d left)", iconPass, name, after)))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newThemeCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "theme [light|dark]",
		Short: "Show or set the web interface theme",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				theme, ok := model.ParseTheme(args[0])
				if !ok {
					return fmt.Errorf("unknown theme %q (want light or dark)", args[0])
				}
				if err := env.prefs.SetTheme(theme); err != nil {
					return err
				}
			}
			theme, err := env.prefs.Theme()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), theme)
			return nil
		},
	}
}

func newExportCmd(env *cliEnv) *cobra.Command {
	var formatName, output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all saved recipes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if formatName == "" && output != "" {
				formatName = filepath.Ext(output)
			}
			format, err := share.ParseFormat(formatName)
			if err != nil {
				return err
			}
			if format == share.FormatXLSX && output == "" {
				return fmt.Errorf("xlsx export needs --output")
			}

			recipes, err := env.manager.List()
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := share.Export(&buf, recipes, format); err != nil {
				return err
			}
			if output == "" {
				_, err := buf.WriteTo(cmd.OutOrStdout())
				return err
			}
			if err := fsutils.WriteFileAtomic(output, buf.Bytes()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), passStyle.Render(fmt.Sprintf("%s Exported %d recipe(s) to %s", iconPass, len(recipes), output)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&formatName, "format", "f", "", "json, yaml, toml, markdown or xlsx (default json, or from --output)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}

func newImportCmd(env *cliEnv) *cobra.Command {
	var formatName, pageURL string
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import recipes from an export file or a recipe web page",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if pageURL != "" {
				if len(args) > 0 {
					return fmt.Errorf("give either a file or --url, not both")
				}
				recipe, err := env.importer.FetchURL(cmd.Context(), pageURL)
				if err != nil {
					return err
				}
				env.manager.SetCurrent(recipe)
				if err := env.manager.SaveCurrent(); err != nil {
					return err
				}
				fmt.Fprintln(out, passStyle.Render(iconPass+" Imported "+recipe.Name))
				return nil
			}

			if len(args) == 0 {
				return fmt.Errorf("give a file to import or --url")
			}
			if formatName == "" {
				formatName = filepath.Ext(args[0])
			}
			format, err := share.ParseFormat(formatName)
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			recipes, err := share.Decode(f, format)
			if err != nil {
				return err
			}
			result, err := share.Import(env.store, recipes)
			if err != nil {
				return err
			}
			if env.jsonOutput {
				return writeJSON(out, result)
			}
			fmt.Fprintln(out, renderImportResult(result))
			return nil
		},
	}
	cmd.Flags().StringVarP(&formatName, "format", "f", "", "json, yaml or toml (default from the file extension)")
	cmd.Flags().StringVar(&pageURL, "url", "", "Fetch a recipe from a web page and save it")
	return cmd
}

func newShareCmd(env *cliEnv) *cobra.Command {
	var output string
	var open bool
	cmd := &cobra.Command{
		Use:   "share <name>",
		Short: "Print the share text of a recipe, or write it as an HTML page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recipe, err := env.manager.View(args[0])
			if err != nil {
				return fmt.Errorf("%q: %w", args[0], err)
			}
			if output == "" {
				if open {
					return fmt.Errorf("--open needs --output")
				}
				_, err := io.WriteString(cmd.OutOrStdout(), share.Text(recipe))
				return err
			}

			// 1. Render the markdown body and wrap it in the share page
			body, err := share.NewRenderer().Recipe(recipe)
			if err != nil {
				return err
			}
			engine, err := templating.NewEngine()
			if err != nil {
				return err
			}
			theme, _ := env.prefs.Theme()
			var buf bytes.Buffer
			if err := engine.Render(&buf, templating.PageShare, templating.ShareData{Theme: theme, Recipe: recipe, Body: body}); err != nil {
				return err
			}

			// 2. Write the page and optionally open it
			if err := fsutils.WriteFileAtomic(output, buf.Bytes()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), passStyle.Render(iconPass+" Wrote "+output))
			if open {
				abs, err := filepath.Abs(output)
				if err != nil {
					return err
				}
				return openBrowser((&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String())
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write a standalone HTML page to this file")
	cmd.Flags().BoolVar(&open, "open", false, "Open the written page in the browser")
	return cmd
}
