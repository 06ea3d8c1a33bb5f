package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Version identifies a reporting-table schema revision. Versions are totally
// ordered; migration walks a single step at a time.
type Version int

const (
	V1 Version = iota + 1
	V2
	V3
)

type Table string

const (
	TableFeePayments  Table = "fee_payments"
	TableAeonPayments Table = "aeon_payments"
)

var (
	ErrUnknownVersion       = errors.New("unrecognized schema version")
	ErrUnknownTable         = errors.New("unrecognized table")
	ErrUnsupportedMigration = errors.New("migration across more than one version is not supported")
)

type Column struct {
	Name       string
	Type       string
	PrimaryKey bool
}

// TableDef is a full table definition. Create DDL and upsert DML are derived
// from the column list, so a later schema version reuses an earlier table
// definition unchanged and only adds what is new.
type TableDef struct {
	Columns []Column
}

var feePaymentsV1 = TableDef{Columns: []Column{
	{Name: "alma_fee_id", Type: "varchar(100)", PrimaryKey: true},
	{Name: "authorize_transaction_id", Type: "varchar(100)", PrimaryKey: true},
	{Name: "transaction_submit_time", Type: "timestamptz"},
	{Name: "patron_user_id", Type: "varchar(100)"},
	{Name: "patron_name", Type: "varchar(100)"},
	{Name: "payment_category", Type: "varchar(100)"},
	{Name: "payment_amount", Type: "numeric"},
}}

var feePaymentsV2 = extend(feePaymentsV1,
	Column{Name: "transaction_settled_time", Type: "timestamptz"},
	Column{Name: "transaction_status", Type: "varchar(100)"},
	Column{Name: "settlement_state", Type: "varchar(100)"},
)

var aeonPaymentsV3 = TableDef{Columns: []Column{
	{Name: "authorize_transaction_id", Type: "varchar(100)", PrimaryKey: true},
	{Name: "transaction_submit_time", Type: "timestamptz"},
	{Name: "transaction_settled_time", Type: "timestamptz"},
	{Name: "transaction_status", Type: "varchar(100)"},
	{Name: "settlement_state", Type: "varchar(100)"},
	{Name: "patron_name", Type: "varchar(100)"},
	{Name: "aeon_transaction_numbers", Type: "varchar(400)"},
	{Name: "payment_amount", Type: "numeric"},
}}

// registry is the closed set of supported versions. V3 carries the V2
// fee-payments definition untouched; it only introduces the aeon table.
var registry = map[Version]map[Table]TableDef{
	V1: {TableFeePayments: feePaymentsV1},
	V2: {TableFeePayments: feePaymentsV2},
	V3: {TableFeePayments: feePaymentsV2, TableAeonPayments: aeonPaymentsV3},
}

// tableOrder fixes statement ordering for multi-table operations.
var tableOrder = []Table{TableFeePayments, TableAeonPayments}

func extend(def TableDef, cols ...Column) TableDef {
	combined := make([]Column, 0, len(def.Columns)+len(cols))
	combined = append(combined, def.Columns...)
	combined = append(combined, cols...)
	return TableDef{Columns: combined}
}

func Parse(n int) (Version, error) {
	v := Version(n)
	if _, ok := registry[v]; !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownVersion, n)
	}
	return v, nil
}

// Tables lists the logical tables the version supports, in fixed order.
func (v Version) Tables() []Table {
	defs, ok := registry[v]
	if !ok {
		return nil
	}
	tables := make([]Table, 0, len(defs))
	for _, t := range tableOrder {
		if _, ok := defs[t]; ok {
			tables = append(tables, t)
		}
	}
	return tables
}

func Def(v Version, t Table) (TableDef, error) {
	defs, ok := registry[v]
	if !ok {
		return TableDef{}, fmt.Errorf("%w: %d", ErrUnknownVersion, int(v))
	}
	def, ok := defs[t]
	if !ok {
		return TableDef{}, fmt.Errorf("%w: %s is not part of schema V%d", ErrUnknownTable, t, int(v))
	}
	return def, nil
}

func (d TableDef) CreateSQL(name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", name)
	for _, c := range d.Columns {
		fmt.Fprintf(&b, "    %s %s,\n", c.Name, c.Type)
	}
	fmt.Fprintf(&b, "    PRIMARY KEY (%s)\n)", strings.Join(d.primaryKey(), ", "))
	return b.String()
}

// UpsertSQL builds the idempotent insert for the table: on natural-key
// conflict, non-key columns are updated in place.
func (d TableDef) UpsertSQL(name string) string {
	names := make([]string, len(d.Columns))
	placeholders := make([]string, len(d.Columns))
	var updates []string
	for i, c := range d.Columns {
		names[i] = c.Name
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		if !c.PrimaryKey {
			updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", c.Name, c.Name))
		}
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s)\nVALUES (%s)\nON CONFLICT (%s) DO UPDATE SET %s",
		name,
		strings.Join(names, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(d.primaryKey(), ", "),
		strings.Join(updates, ", "),
	)
}

func (d TableDef) primaryKey() []string {
	var pk []string
	for _, c := range d.Columns {
		if c.PrimaryKey {
			pk = append(pk, c.Name)
		}
	}
	return pk
}

func (d TableDef) hasColumn(name string) bool {
	for _, c := range d.Columns {
		if c.Name == name {
			return true
		}
	}
	return false
}

// TableNames maps logical tables to the physical names configured for a
// deployment.
type TableNames struct {
	FeePayments  string
	AeonPayments string
}

func (n TableNames) For(t Table) (string, error) {
	switch t {
	case TableFeePayments:
		return n.FeePayments, nil
	case TableAeonPayments:
		return n.AeonPayments, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownTable, t)
}

// Migrate returns the DDL taking a database from one version to an adjacent
// one. Same-version migration yields no statements. Wider hops are refused;
// operators step through intermediate versions. Downgrades drop the columns
// the next version added but never drop a table.
func Migrate(from, to Version, names TableNames) ([]string, error) {
	if _, ok := registry[from]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownVersion, int(from))
	}
	if _, ok := registry[to]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownVersion, int(to))
	}
	if from == to {
		return nil, nil
	}
	if gap := int(to - from); gap > 1 || gap < -1 {
		return nil, fmt.Errorf("%w: V%d to V%d", ErrUnsupportedMigration, int(from), int(to))
	}

	var statements []string
	for _, t := range to.Tables() {
		name, err := names.For(t)
		if err != nil {
			return nil, err
		}
		toDef := registry[to][t]
		fromDef, existed := registry[from][t]
		if !existed {
			statements = append(statements, toDef.CreateSQL(name))
			continue
		}
		if stmt := alterSQL(name, fromDef, toDef); stmt != "" {
			statements = append(statements, stmt)
		}
	}
	return statements, nil
}

func alterSQL(name string, from, to TableDef) string {
	var clauses []string
	for _, c := range to.Columns {
		if !from.hasColumn(c.Name) {
			clauses = append(clauses, fmt.Sprintf("ADD COLUMN %s %s", c.Name, c.Type))
		}
	}
	for _, c := range from.Columns {
		if !to.hasColumn(c.Name) {
			clauses = append(clauses, fmt.Sprintf("DROP COLUMN %s", c.Name))
		}
	}
	if len(clauses) == 0 {
		return ""
	}
	return fmt.Sprintf("ALTER TABLE %s %s", name, strings.Join(clauses, ", "))
}
