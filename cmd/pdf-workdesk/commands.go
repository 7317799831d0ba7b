package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/a3tai/pdf-workdesk/internal/pdf"
)

// documentFlags are shared by every command that reads one document
type documentFlags struct {
	password string
	output   string
}

func (f *documentFlags) register(cmd *cobra.Command, withOutput bool) {
	cmd.Flags().StringVarP(&f.password, "password", "p", "", "password of the input PDF")
	if withOutput {
		cmd.Flags().StringVarP(&f.output, "out", "o", "", "output file (default: next to the input)")
	}
}

// artifactCmd builds a command that turns one document into one artifact
func artifactCmd(use, short string, flags *documentFlags, op func(a *app, doc *pdf.Document) (*pdf.Artifact, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, "")
			if err != nil {
				return err
			}
			doc, err := a.load(cmd.Context(), args[0], flags.password)
			if err != nil {
				return err
			}
			artifact, err := op(a, doc)
			if err != nil {
				return err
			}
			return a.write(cmd, args[0], flags.output, artifact)
		},
	}
	flags.register(cmd, true)
	return cmd
}

func textCmd() *cobra.Command {
	var flags documentFlags
	var req pdf.ExtractTextRequest

	cmd := &cobra.Command{
		Use:   "text <pdf|url>",
		Short: "Print the text of selected pages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, "")
			if err != nil {
				return err
			}
			doc, err := a.load(cmd.Context(), args[0], flags.password)
			if err != nil {
				return err
			}
			result, err := a.service.ExtractText(doc, req)
			if err != nil {
				return err
			}
			if flags.output != "" {
				return a.write(cmd, args[0], flags.output, &pdf.Artifact{
					Name:     filepath.Base(flags.output),
					MIMEType: pdf.MIMETypeText,
					Data:     []byte(result.Text),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Text)
			return nil
		},
	}
	flags.register(cmd, true)
	cmd.Flags().StringVar(&req.Pages, "pages", "all", `pages to extract, e.g. "1-3,5"`)
	cmd.Flags().StringVar(&req.Mode, "mode", pdf.TextModePlain, "extraction mode: plain|layout")
	return cmd
}

func imagesCmd() *cobra.Command {
	var flags documentFlags
	var req pdf.ExtractImagesRequest
	var outDir string

	cmd := &cobra.Command{
		Use:   "images <pdf|url>",
		Short: "Save the images of selected pages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, "")
			if err != nil {
				return err
			}
			doc, err := a.load(cmd.Context(), args[0], flags.password)
			if err != nil {
				return err
			}
			result, err := a.service.ExtractImages(doc, req)
			if err != nil {
				return err
			}
			if result.TotalCount == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No images found")
				return nil
			}

			dir := outputPath(args[0], outDir, doc.Stem()+"_images")
			for _, img := range result.Images {
				if err := a.write(cmd, "", filepath.Join(dir, img.Name), &pdf.Artifact{Name: img.Name, Data: img.Data}); err != nil {
					return err
				}
			}
			return nil
		},
	}
	flags.register(cmd, false)
	cmd.Flags().StringVar(&req.Pages, "pages", "all", `pages to extract from, e.g. "1-3,5"`)
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default: <name>_images next to the input)")
	return cmd
}

func infoCmd() *cobra.Command {
	var flags documentFlags
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "info <pdf|url>",
		Short: "Show the metadata of a PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, "")
			if err != nil {
				return err
			}
			doc, err := a.load(cmd.Context(), args[0], flags.password)
			if err != nil {
				return err
			}
			md, err := a.service.Metadata(doc)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(md)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, row := range md.Rows() {
				fmt.Fprintf(tw, "%s\t%s\n", row.Key, row.Value)
			}
			return tw.Flush()
		},
	}
	flags.register(cmd, false)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func encryptCmd() *cobra.Command {
	var flags documentFlags
	var req pdf.EncryptRequest

	cmd := artifactCmd("encrypt <pdf|url>", "Protect a PDF with a password", &flags,
		func(a *app, doc *pdf.Document) (*pdf.Artifact, error) {
			return a.service.Encrypt(doc, req)
		})
	cmd.Flags().StringVar(&req.Password, "new-password", "", "password to protect the output with")
	cmd.Flags().StringVar(&req.Algorithm, "algorithm", pdf.DefaultEncryptionAlgorithm, "encryption algorithm")
	_ = cmd.MarkFlagRequired("new-password")
	return cmd
}

func decryptCmd() *cobra.Command {
	var flags documentFlags
	cmd := artifactCmd("decrypt <pdf|url>", "Remove the password from a PDF", &flags,
		func(a *app, doc *pdf.Document) (*pdf.Artifact, error) {
			return a.service.Decrypt(doc)
		})
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func rotateCmd() *cobra.Command {
	var flags documentFlags
	var req pdf.RotateRequest

	cmd := artifactCmd("rotate <pdf|url>", "Rotate all pages clockwise", &flags,
		func(a *app, doc *pdf.Document) (*pdf.Artifact, error) {
			return a.service.Rotate(doc, req)
		})
	cmd.Flags().IntVar(&req.Angle, "angle", 90, "rotation angle: 0, 90, 180 or 270")
	return cmd
}

func resizeCmd() *cobra.Command {
	var flags documentFlags
	var req pdf.ResizeRequest

	cmd := artifactCmd("resize <pdf|url>", "Change the paper size and scale the content", &flags,
		func(a *app, doc *pdf.Document) (*pdf.Artifact, error) {
			return a.service.Resize(doc, req)
		})
	cmd.Flags().StringVar(&req.PaperSize, "paper", pdf.DefaultPaperSize, "target paper size")
	cmd.Flags().Float64Var(&req.Scale, "scale", 1, "content scale (0.1 to 2.0)")
	return cmd
}

func mergeCmd() *cobra.Command {
	var flags documentFlags
	var secondPassword string

	cmd := &cobra.Command{
		Use:   "merge <first> <second>",
		Short: "Append the second PDF to the first",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, "")
			if err != nil {
				return err
			}
			first, err := a.load(cmd.Context(), args[0], flags.password)
			if err != nil {
				return err
			}
			second, err := a.load(cmd.Context(), args[1], secondPassword)
			if err != nil {
				return err
			}
			artifact, err := a.service.Merge(first, second)
			if err != nil {
				return err
			}
			return a.write(cmd, args[0], flags.output, artifact)
		},
	}
	flags.register(cmd, true)
	cmd.Flags().StringVar(&secondPassword, "second-password", "", "password of the second PDF")
	return cmd
}

func convertCmd() *cobra.Command {
	var flags documentFlags
	return artifactCmd("convert <pdf|url>", "Convert a PDF to Word (DOCX)", &flags,
		func(a *app, doc *pdf.Document) (*pdf.Artifact, error) {
			return a.service.ConvertToWord(doc)
		})
}

func reduceCmd() *cobra.Command {
	var flags documentFlags
	var req pdf.ReduceRequest
	var quality int

	cmd := &cobra.Command{
		Use:   "reduce <pdf|url>",
		Short: "Reduce the file size of a PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, "")
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("image-quality") {
				req.ImageQuality = &quality
			}
			doc, err := a.load(cmd.Context(), args[0], flags.password)
			if err != nil {
				return err
			}
			result, err := a.service.Reduce(doc, req)
			if err != nil {
				return err
			}
			if err := a.write(cmd, args[0], flags.output, result.Artifact); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reduced from %d to %d bytes (%.1f%% smaller)\n",
				result.OriginalSize, result.ReducedSize, result.Reduction())
			return nil
		},
	}
	flags.register(cmd, true)
	cmd.Flags().BoolVar(&req.RemoveDuplication, "remove-duplication", false, "remove duplicate objects")
	cmd.Flags().BoolVar(&req.RemoveImages, "remove-images", false, "blank out all images")
	cmd.Flags().IntVar(&quality, "image-quality", pdf.MaxImageQuality, "re-encode images at this JPEG quality (1-100)")
	cmd.Flags().BoolVar(&req.Lossless, "lossless", false, "apply lossless compression")
	return cmd
}
