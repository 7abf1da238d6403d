package dataset

import (
	"fmt"
	"strings"

	"github.com/spektr-org/mpgexplorer/engine"
	"github.com/spektr-org/mpgexplorer/schema"
)

// SchemaTable lists every discovered column with its type, role and the
// classification details behind the role, in source order.
func SchemaTable(sch *schema.Config) *engine.TableData {
	t := &engine.TableData{
		Title: "Columns",
		Columns: []engine.Column{
			{Key: "column", Label: "Column", Type: "text", Align: "left"},
			{Key: "type", Label: "Type", Type: "text", Align: "left"},
			{Key: "role", Label: "Role", Type: "text", Align: "left"},
			{Key: "numeric", Label: "Numeric", Type: "text", Align: "center"},
			{Key: "details", Label: "Details", Type: "text", Align: "left"},
		},
	}
	for _, col := range sch.Columns {
		numeric := "no"
		if col.Numeric {
			numeric = "yes"
		}
		t.Rows = append(t.Rows, []string{col.Key, col.Type, col.Role, numeric, columnDetails(sch, col)})
	}
	return t
}

func columnDetails(sch *schema.Config, col schema.ColumnMeta) string {
	switch col.Role {
	case schema.RoleDimension:
		d, ok := sch.Dimension(col.Key)
		if !ok {
			return ""
		}
		parts := []string{d.CardinalityHint + " cardinality"}
		if d.IsTemporal {
			parts = append(parts, "temporal")
		}
		if samples := d.SampleValues; len(samples) > 0 {
			if len(samples) > 3 {
				samples = samples[:3]
			}
			parts = append(parts, "e.g. "+strings.Join(samples, ", "))
		}
		return strings.Join(parts, "; ")
	case schema.RoleMeasure:
		m, ok := sch.Measure(col.Key)
		if !ok {
			return ""
		}
		return fmt.Sprintf("%s (default %s)", strings.Join(m.Aggregations, ", "), m.DefaultAggregation)
	case schema.RoleSkipped:
		reason, _ := sch.SkipReason(col.Header)
		return reason
	}
	return ""
}
