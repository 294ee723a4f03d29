// Package export turns a patient export bundle into spreadsheet tables.
package export

import (
	"fmt"
	"time"

	"github.com/fajrglobal/clinic-api/internal/model"
)

// Encounter datetimes are written in UTC without an offset. Microseconds
// appear as six digits only when non-zero.
const (
	DatetimeLayout      = "2006-01-02 15:04:05"
	DatetimeMicroLayout = "2006-01-02 15:04:05.000000"
)

// Sheet names, in workbook order.
const (
	SheetPatient    = "Patient"
	SheetEncounters = "Encounters"
	SheetItems      = "Items"
)

var (
	patientHeader   = []interface{}{"Field", "Value"}
	encounterHeader = []interface{}{"Encounter ID", "Patient ID", "Datetime", "Pregnancy", "Chief complaint", "Clinical summary", "Weight(kg)", "Specialty"}
	itemHeader      = []interface{}{"Encounter ID", "Item type", "Summary text", "Payload JSON"}
)

// Sheet is one table of the export. Rows[0] is the header row.
type Sheet struct {
	Name string
	Rows [][]interface{}
}

// Assemble builds the Patient, Encounters and Items sheets. Items follow the
// bundle's encounter order.
func Assemble(b *model.ExportBundle) ([]Sheet, error) {
	if b == nil || b.Patient == nil {
		return nil, fmt.Errorf("export bundle has no patient")
	}

	items, err := itemRows(b)
	if err != nil {
		return nil, err
	}

	return []Sheet{
		{Name: SheetPatient, Rows: patientRows(b)},
		{Name: SheetEncounters, Rows: encounterRows(b)},
		{Name: SheetItems, Rows: items},
	}, nil
}

func patientRows(b *model.ExportBundle) [][]interface{} {
	p := b.Patient
	dob := ""
	if p.DateOfBirth != nil {
		dob = p.DateOfBirth.String()
	}

	rows := [][]interface{}{
		patientHeader,
		{"Patient ID", p.ID},
		{"Full name", p.FullName},
		{"DOB", dob},
		{"Sex", string(p.Sex)},
		{"No known allergies", p.NoKnownAllergies},
	}
	for _, id := range b.Identifiers {
		rows = append(rows, []interface{}{fmt.Sprintf("Identifier (%s)", id.IDType), id.IDValue})
	}
	return rows
}

func encounterRows(b *model.ExportBundle) [][]interface{} {
	rows := make([][]interface{}, 0, len(b.Encounters)+1)
	rows = append(rows, encounterHeader)
	for _, e := range b.Encounters {
		var weight interface{} = ""
		if e.WeightKg != nil {
			weight = e.WeightKg.InexactFloat64()
		}
		rows = append(rows, []interface{}{
			e.ID,
			e.PatientID,
			FormatDatetime(e.EncounterDatetime),
			string(e.PregnancyStatus),
			deref(e.ChiefComplaint),
			deref(e.ClinicalSummary),
			weight,
			deref(e.SpecialtyCode),
		})
	}
	return rows
}

// FormatDatetime renders t as an Encounters sheet cell.
func FormatDatetime(t time.Time) string {
	t = t.UTC()
	if t.Nanosecond()/int(time.Microsecond) == 0 {
		return t.Format(DatetimeLayout)
	}
	return t.Format(DatetimeMicroLayout)
}

func itemRows(b *model.ExportBundle) ([][]interface{}, error) {
	rows := [][]interface{}{itemHeader}
	for _, e := range b.Encounters {
		for _, it := range b.Items[e.ID] {
			text, err := it.PayloadJSON.Text()
			if err != nil {
				return nil, fmt.Errorf("encounter %d item %s: %w", e.ID, it.ItemType, err)
			}
			rows = append(rows, []interface{}{e.ID, string(it.ItemType), deref(it.SummaryText), text})
		}
	}
	return rows, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
