package schema

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/libops/payrecon/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNames = TableNames{FeePayments: "fee_pay", AeonPayments: "aeon_pay"}

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		input     int
		expected  Version
		expectErr bool
	}{
		{name: "V1", input: 1, expected: V1},
		{name: "V3", input: 3, expected: V3},
		{name: "zero is unknown", input: 0, expectErr: true},
		{name: "future version is unknown", input: 4, expectErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Parse(tt.input)
			if tt.expectErr {
				assert.ErrorIs(t, err, ErrUnknownVersion)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestTables(t *testing.T) {
	assert.Equal(t, []Table{TableFeePayments}, V1.Tables())
	assert.Equal(t, []Table{TableFeePayments}, V2.Tables())
	assert.Equal(t, []Table{TableFeePayments, TableAeonPayments}, V3.Tables())
}

func TestLaterVersionReusesEarlierDefinition(t *testing.T) {
	v2Def, err := Def(V2, TableFeePayments)
	require.NoError(t, err)
	v3Def, err := Def(V3, TableFeePayments)
	require.NoError(t, err)
	assert.Equal(t, v2Def, v3Def)
}

func TestUpsertSQL(t *testing.T) {
	def, err := Def(V2, TableFeePayments)
	require.NoError(t, err)
	sql := def.UpsertSQL("fee_pay")

	assert.Contains(t, sql, "INSERT INTO fee_pay")
	assert.Contains(t, sql, "ON CONFLICT (alma_fee_id, authorize_transaction_id) DO UPDATE SET")
	assert.Contains(t, sql, fmt.Sprintf("$%d", len(def.Columns)))
	assert.NotContains(t, sql, fmt.Sprintf("$%d", len(def.Columns)+1))
	// key columns never appear in the update list
	assert.NotContains(t, sql, "alma_fee_id = EXCLUDED")
}

func TestMigrateSameVersionIsNoop(t *testing.T) {
	for _, v := range []Version{V1, V2, V3} {
		statements, err := Migrate(v, v, testNames)
		assert.NoError(t, err)
		assert.Empty(t, statements)
	}
}

func TestMigrateRefusesMultiHop(t *testing.T) {
	_, err := Migrate(V1, V3, testNames)
	assert.ErrorIs(t, err, ErrUnsupportedMigration)
	_, err = Migrate(V3, V1, testNames)
	assert.ErrorIs(t, err, ErrUnsupportedMigration)
}

func TestMigrateUnknownVersion(t *testing.T) {
	_, err := Migrate(V1, Version(9), testNames)
	assert.ErrorIs(t, err, ErrUnknownVersion)
}

func TestMigrateUpgrade(t *testing.T) {
	statements, err := Migrate(V1, V2, testNames)
	require.NoError(t, err)
	require.Len(t, statements, 1)
	assert.Contains(t, statements[0], "ALTER TABLE fee_pay")
	assert.Contains(t, statements[0], "ADD COLUMN transaction_settled_time timestamptz")
	assert.Contains(t, statements[0], "ADD COLUMN transaction_status varchar(100)")
	assert.Contains(t, statements[0], "ADD COLUMN settlement_state varchar(100)")

	statements, err = Migrate(V2, V3, testNames)
	require.NoError(t, err)
	require.Len(t, statements, 1)
	assert.Contains(t, statements[0], "CREATE TABLE aeon_pay")
}

func TestMigrateDowngrade(t *testing.T) {
	statements, err := Migrate(V2, V1, testNames)
	require.NoError(t, err)
	require.Len(t, statements, 1)
	assert.Contains(t, statements[0], "DROP COLUMN transaction_settled_time")
	assert.Contains(t, statements[0], "DROP COLUMN transaction_status")
	assert.Contains(t, statements[0], "DROP COLUMN settlement_state")

	// tables are never dropped on downgrade
	statements, err = Migrate(V3, V2, testNames)
	require.NoError(t, err)
	assert.Empty(t, statements)
}

// Stepping V1 -> V2 -> V3 must land on the same column sets as creating V3
// tables directly.
func TestMigrationComposes(t *testing.T) {
	state := map[string]map[string]bool{
		"fee_pay": columnSet(t, feePaymentsV1),
	}

	for _, step := range [][2]Version{{V1, V2}, {V2, V3}} {
		statements, err := Migrate(step[0], step[1], testNames)
		require.NoError(t, err)
		for _, stmt := range statements {
			applyStatement(t, state, stmt)
		}
	}

	assert.Equal(t, columnSet(t, feePaymentsV2), state["fee_pay"])
	assert.Equal(t, columnSet(t, aeonPaymentsV3), state["aeon_pay"])
}

func columnSet(t *testing.T, def TableDef) map[string]bool {
	t.Helper()
	set := make(map[string]bool, len(def.Columns))
	for _, c := range def.Columns {
		set[c.Name] = true
	}
	return set
}

// applyStatement interprets the registry's own DDL just far enough to track
// which columns each table would have.
func applyStatement(t *testing.T, state map[string]map[string]bool, stmt string) {
	t.Helper()
	fields := strings.Fields(stmt)
	switch {
	case strings.HasPrefix(stmt, "CREATE TABLE"):
		name := fields[2]
		require.NotContains(t, state, name)
		state[name] = make(map[string]bool)
		for _, line := range strings.Split(stmt, "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "CREATE") || strings.HasPrefix(line, ")") || strings.HasPrefix(line, "PRIMARY KEY") {
				continue
			}
			state[name][strings.Fields(line)[0]] = true
		}
	case strings.HasPrefix(stmt, "ALTER TABLE"):
		name := fields[2]
		require.Contains(t, state, name)
		for _, clause := range strings.Split(stmt[strings.Index(stmt, name)+len(name):], ",") {
			words := strings.Fields(clause)
			require.GreaterOrEqual(t, len(words), 3)
			switch words[0] + " " + words[1] {
			case "ADD COLUMN":
				state[name][words[2]] = true
			case "DROP COLUMN":
				delete(state[name], words[2])
			default:
				t.Fatalf("unexpected alter clause: %s", clause)
			}
		}
	default:
		t.Fatalf("unexpected statement: %s", stmt)
	}
}

func TestFeePaymentArgs(t *testing.T) {
	settled := time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)
	rec := domain.FeePaymentRecord{
		AlmaFeeID:              "F1",
		AuthorizeTransactionID: "T1",
		TransactionSubmitTime:  time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		TransactionSettledTime: &settled,
		TransactionStatus:      "settledSuccessfully",
		SettlementState:        "settledSuccessfully",
		PatronUserID:           "U1",
		PatronName:             "Pat Smith",
		PaymentCategory:        "OVERDUEFINE",
		PaymentAmount:          12.50,
	}

	v1Args, err := FeePaymentArgs(V1, rec)
	require.NoError(t, err)
	assert.Len(t, v1Args, 7)
	assert.Equal(t, "F1", v1Args[0])
	assert.Equal(t, "T1", v1Args[1])

	v2Args, err := FeePaymentArgs(V2, rec)
	require.NoError(t, err)
	assert.Len(t, v2Args, 10)
	assert.Contains(t, v2Args, &settled)
}

func TestAeonPaymentArgs(t *testing.T) {
	rec := domain.AeonPaymentRecord{
		AuthorizeTransactionID: "T9",
		TransactionSubmitTime:  time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		PatronName:             "Pat Smith",
		AeonTransactionNumbers: "41, 42",
		PaymentAmount:          30,
	}

	args, err := AeonPaymentArgs(V3, rec)
	require.NoError(t, err)
	assert.Len(t, args, 8)
	assert.Equal(t, "T9", args[0])

	// the aeon table does not exist before V3
	_, err = AeonPaymentArgs(V1, rec)
	assert.ErrorIs(t, err, ErrUnknownTable)
}
