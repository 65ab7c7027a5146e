package main

import (
	"github.com/spf13/cobra"

	"github.com/zekoder/zegraphql/types"
	"github.com/zekoder/zegraphql/zegraphql/manager"
	"github.com/zekoder/zegraphql/zegraphql/query"
)

var listCmd = &cobra.Command{
	Use:   "list <entity>",
	Short: "List records with filters, sorting and pagination",
	Long: `List prints the records of an entity.

Filters use field.path__op=value, where op is one of eq (default), ne, gt,
gte, lt, lte, prefix, contains, postfix, ilike, in, nin or is_null. Lists for
in and nin are comma separated. Sort by a field path, prefixed with - for
descending order.

Examples:
  zegraphql list documents --where status__in=new,failed --sort -release_date
  zegraphql list industries --where industry_document.name__prefix=Oil --all`,
	Args: cobra.ExactArgs(1),
	RunE: runList,
}

func init() {
	flags := listCmd.Flags()
	flags.StringArrayP("where", "w", nil, "Filter as field.path__op=value (repeatable)")
	flags.String("sort", "", "Sort field path, - prefix for descending")
	flags.Int("page", 1, "Page number, starting at 1")
	flags.Int("page-size", 0, "Page size (default from config)")
	flags.Bool("all", false, "Return every matching record")
}

func runList(cmd *cobra.Command, args []string) error {
	entity := args[0]

	where, _ := cmd.Flags().GetStringArray("where")
	filters, err := parseWhere(where)
	if err != nil {
		return err
	}
	sortBy, _ := cmd.Flags().GetString("sort")
	page, _ := cmd.Flags().GetInt("page")
	pageSize, _ := cmd.Flags().GetInt("page-size")
	all, _ := cmd.Flags().GetBool("all")

	rt, err := setup(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	q := types.QuerySchema{Filters: filters, Sort: sortBy, Page: &page}
	if cmd.Flags().Changed("page-size") {
		q.PageSize = &pageSize
	}

	if all {
		m, err := rt.service.Manager(entity)
		if err != nil {
			return NewStoreError("list", entity, err)
		}
		records, err := m.List(cmd.Context(), manager.ListOptions{
			Update:      query.FromQuerySchema(q),
			Unpaginated: true,
		})
		if err != nil {
			return NewStoreError("list", entity, err)
		}
		return writeRecords(cmd.OutOrStdout(), format, records)
	}

	result, err := rt.service.List(cmd.Context(), entity, q)
	if err != nil {
		return NewStoreError("list", entity, err)
	}
	if err := writeRecords(cmd.OutOrStdout(), format, result.Items); err != nil {
		return err
	}
	if result.NextPage != nil && format == FormatTable {
		cmd.PrintErrf("More records available, use --page %d\n", *result.NextPage)
	}
	return nil
}
