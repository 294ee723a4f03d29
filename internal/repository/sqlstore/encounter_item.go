package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fajrglobal/clinic-api/internal/model"
	"github.com/fajrglobal/clinic-api/internal/repository"
)

const encounterItemColumns = `id, encounter_id, item_type, summary_text, payload_json, created_at`

type encounterItemRepository struct {
	BaseRepository
}

func NewEncounterItemRepository(base BaseRepository) repository.EncounterItemRepository {
	return &encounterItemRepository{base}
}

// Upsert writes the item in a single statement against the
// (encounter_id, item_type) unique index, so concurrent writers of the
// same type converge on one row.
func (r *encounterItemRepository) Upsert(ctx context.Context, encounterID int64, itemType model.ItemType, payload model.Payload, summary *string) (*model.EncounterItem, error) {
	start := time.Now()
	var item model.EncounterItem

	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := tx.Rebind(`
			INSERT INTO encounter_items (encounter_id, item_type, summary_text, payload_json, created_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (encounter_id, item_type) DO UPDATE
			SET summary_text = excluded.summary_text,
				payload_json = excluded.payload_json
			RETURNING id
		`)
		var id int64
		if err := tx.QueryRowxContext(ctx, query, encounterID, itemType, summary, payload, now()).Scan(&id); err != nil {
			return err
		}

		// Re-read so created_at is the first write's.
		query = tx.Rebind(`SELECT ` + encounterItemColumns + ` FROM encounter_items WHERE id = ?`)
		return tx.GetContext(ctx, &item, query, id)
	})
	if err = r.observe("encounter_item.upsert", start, err); err != nil {
		return nil, fmt.Errorf("failed to upsert encounter item: %w", err)
	}
	return &item, nil
}

func (r *encounterItemRepository) ListByEncounter(ctx context.Context, encounterID int64) ([]*model.EncounterItem, error) {
	start := time.Now()
	query := r.db.Rebind(`
		SELECT ` + encounterItemColumns + ` FROM encounter_items
		WHERE encounter_id = ?
		ORDER BY id
	`)
	items := []*model.EncounterItem{}
	err := r.db.SelectContext(ctx, &items, query, encounterID)
	if err = r.observe("encounter_item.list_by_encounter", start, err); err != nil {
		return nil, fmt.Errorf("failed to list encounter items: %w", err)
	}
	return items, nil
}

// SheetItems returns the payload of every item type present on the encounter.
func (r *encounterItemRepository) SheetItems(ctx context.Context, encounterID int64) (map[model.ItemType]model.Payload, error) {
	items, err := r.ListByEncounter(ctx, encounterID)
	if err != nil {
		return nil, err
	}
	sheet := make(map[model.ItemType]model.Payload, len(items))
	for _, item := range items {
		sheet[item.ItemType] = item.PayloadJSON
	}
	return sheet, nil
}

// listItemsByPatient returns the items of all the patient's encounters
// grouped by encounter id.
func listItemsByPatient(ctx context.Context, q queryer, patientID int64) (map[int64][]*model.EncounterItem, error) {
	query := q.Rebind(`
		SELECT ` + encounterItemColumns + ` FROM encounter_items
		WHERE encounter_id IN (SELECT id FROM encounters WHERE patient_id = ?)
		ORDER BY encounter_id, id
	`)
	var items []*model.EncounterItem
	if err := sqlx.SelectContext(ctx, q, &items, query, patientID); err != nil {
		return nil, err
	}

	grouped := make(map[int64][]*model.EncounterItem)
	for _, item := range items {
		grouped[item.EncounterID] = append(grouped[item.EncounterID], item)
	}
	return grouped, nil
}
