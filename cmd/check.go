package cmd

import (
	"errors"
	"fmt"
	"strings"

	"catalog-sync/feature/catalog"

	"github.com/spf13/cobra"
)

// checkCmd verifies that both catalogs carry the tables and columns the reader needs.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check both catalogs against the expected schema",
	Long: `Inspects working copies of the editor and library catalogs and reports missing tables
and columns. Exits non-zero when either catalog does not match, which usually means an
application update changed its catalog layout.`,
	RunE: runCheck,
}

func init() {
	RootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.close()

	reader, err := a.reader()
	if err != nil {
		return err
	}

	reports, err := reader.Check(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderSchemaReports(reports))
	return schemaError(reports)
}

func renderSchemaReports(reports []*catalog.SchemaReport) string {
	var rows [][]string
	for _, report := range reports {
		for _, table := range report.TableNames() {
			tr := report.Tables[table]
			rows = append(rows, []string{report.Catalog, table, tr.Status, strings.Join(tr.MissingColumns, ", ")})
		}
		for _, msg := range report.Errors {
			rows = append(rows, []string{report.Catalog, "", "error", msg})
		}
	}
	return renderTable([]string{"Catalog", "Table", "Status", "Missing"}, rows, nil)
}

func schemaError(reports []*catalog.SchemaReport) error {
	var errs []error
	for _, report := range reports {
		if !report.Matched {
			errs = append(errs, fmt.Errorf("%s catalog does not match the expected schema", report.Catalog))
		}
	}
	return errors.Join(errs...)
}
