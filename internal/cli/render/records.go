package render

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/samber/lo"

	"github.com/gantry-org/gantry-cli/internal/domain/models"
	"github.com/gantry-org/gantry-cli/internal/usecase"
)

var (
	nsHeader        = color.New(color.BgYellow, color.FgBlack)
	nsHeaderBold    = color.New(color.BgYellow, color.FgBlack, color.Bold)
	chainHeader     = color.New(color.BgCyan, color.FgBlack)
	chainHeaderBold = color.New(color.BgCyan, color.FgBlack, color.Bold)

	sectionTitle = color.New(color.Bold, color.FgHiWhite)
	addressText  = color.New(color.FgWhite)
	stampText    = color.New(color.Faint)
	graphTag     = color.New(color.FgCyan)
	refTag       = color.New(color.Faint)

	kindStyles = map[models.RecordKind]*color.Color{
		models.KindComponent: color.New(color.FgGreen, color.Bold),
		models.KindOracle:    color.New(color.FgMagenta, color.Bold),
		models.KindAuxiliary: color.New(color.FgBlue, color.Bold),
	}
)

// RecordsRenderer writes record listings as a tree of namespace and
// chain headers with one table per record kind.
type RecordsRenderer struct {
	out io.Writer
}

// NewRecordsRenderer creates a new records renderer.
func NewRecordsRenderer(out io.Writer) *RecordsRenderer {
	return &RecordsRenderer{out: out}
}

// RenderRecordList renders the full grouped listing.
func (r *RecordsRenderer) RenderRecordList(result *usecase.ListRecordsResult) error {
	if len(result.Records) == 0 {
		fmt.Fprintln(r.out, "No records found")
		return nil
	}

	byNamespace := groupRecords(result.Records)

	// Size columns over every section so tables line up across chains.
	var all []TableData
	for _, chains := range byNamespace {
		for _, recs := range chains {
			for _, section := range splitByKind(recs) {
				if len(section.records) > 0 {
					all = append(all, recordTable(section.records))
				}
			}
		}
	}
	widths := calculateTableColumnWidths(all)

	namespaces := lo.Keys(byNamespace)
	sort.Strings(namespaces)
	for _, ns := range namespaces {
		r.renderNamespace(ns, byNamespace[ns], widths)
	}

	fmt.Fprintf(r.out, "Total records: %d\n", len(result.Records))
	return nil
}

func (r *RecordsRenderer) renderNamespace(ns string, chains map[uint64][]*models.Record, widths []int) {
	fmt.Fprintln(r.out, nsHeader.Sprintf("   ◎ %-12s %s",
		"namespace:", nsHeaderBold.Sprintf("%-30s", strings.ToUpper(ns))))

	chainIDs := lo.Keys(chains)
	sort.Slice(chainIDs, func(i, j int) bool { return chainIDs[i] < chainIDs[j] })

	for i, chainID := range chainIDs {
		r.renderChain(chainID, chains[chainID], widths, i == len(chainIDs)-1)
	}
}

func (r *RecordsRenderer) renderChain(chainID uint64, recs []*models.Record, widths []int, last bool) {
	branch, cont := "├─", "│ "
	if last {
		branch, cont = "└─", "  "
	}

	fmt.Fprintf(r.out, "%s%s%s\n", branch,
		chainHeader.Sprintf(" ⛓ %-12s ", "chain:"),
		chainHeaderBold.Sprintf("%-30s", strconv.FormatUint(chainID, 10)))
	fmt.Fprintln(r.out, cont)

	shown := 0
	for _, section := range splitByKind(recs) {
		if len(section.records) == 0 {
			continue
		}
		if shown > 0 {
			fmt.Fprintln(r.out, cont)
		}
		fmt.Fprintf(r.out, "%s%s\n", cont, sectionTitle.Sprint(section.title))
		fmt.Fprint(r.out, renderTableWithWidths(recordTable(section.records), widths, cont))
		fmt.Fprintln(r.out)
		shown++
	}

	if last {
		fmt.Fprintln(r.out)
	} else {
		fmt.Fprintln(r.out, cont)
	}
}

// groupRecords buckets records by namespace, then by chain.
func groupRecords(records []*models.Record) map[string]map[uint64][]*models.Record {
	grouped := make(map[string]map[uint64][]*models.Record)
	for _, rec := range records {
		chains, ok := grouped[rec.Namespace]
		if !ok {
			chains = make(map[uint64][]*models.Record)
			grouped[rec.Namespace] = chains
		}
		chains[rec.ChainID] = append(chains[rec.ChainID], rec)
	}
	return grouped
}

// kindSection groups records of one kind under a section title.
type kindSection struct {
	title   string
	records []*models.Record
}

// splitByKind partitions chain records into display sections, components
// first since they are what the graph is about.
func splitByKind(records []*models.Record) []kindSection {
	sections := []kindSection{
		{title: "COMPONENTS"},
		{title: "ORACLES"},
		{title: "AUXILIARY"},
	}
	for _, rec := range records {
		switch rec.Kind {
		case models.KindOracle:
			sections[1].records = append(sections[1].records, rec)
		case models.KindAuxiliary:
			sections[2].records = append(sections[2].records, rec)
		default:
			sections[0].records = append(sections[0].records, rec)
		}
	}
	return sections
}

// recordTable turns one section's records into table rows.
func recordTable(records []*models.Record) TableData {
	// Creation order within a section mirrors nonce order.
	sort.Slice(records, func(i, j int) bool {
		if records[i].Graph == records[j].Graph {
			return records[i].Nonce < records[j].Nonce
		}
		return records[i].Graph < records[j].Graph
	})

	table := make(TableData, 0, len(records))
	for _, rec := range records {
		name := kindStyle(rec.Kind).Sprint(rec.DisplayName())
		if rec.Graph != "" {
			name += " " + graphTag.Sprintf("(%s)", rec.Graph)
		}

		refs := ""
		if len(rec.ForwardRefs) > 0 {
			refs = refTag.Sprintf("↻ %s", strings.Join(rec.ForwardRefs, ", "))
		}

		table = append(table, []string{
			name,
			addressText.Sprint(rec.Address),
			refs,
			stampText.Sprint(rec.CreatedAt.Format("2006-01-02 15:04:05")),
		})
	}
	return table
}

func kindStyle(kind models.RecordKind) *color.Color {
	if style, ok := kindStyles[kind]; ok {
		return style
	}
	return kindStyles[models.KindComponent]
}
