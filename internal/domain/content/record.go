package content

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// ContentRecord is the persisted mirror row of one validated record. The full
// record lives in Document; the other columns exist for filtering.
type ContentRecord struct {
	ID          string         `gorm:"column:id;primaryKey" json:"id"`
	Position    int            `gorm:"column:position;not null;default:0;index" json:"position"`
	Type        string         `gorm:"column:type;not null;index" json:"type"`
	Name        string         `gorm:"column:name;not null;index" json:"name"`
	Status      string         `gorm:"column:status;not null;index" json:"status"`
	Version     int            `gorm:"column:version;not null;default:1" json:"version"`
	LevelScheme string         `gorm:"column:level_scheme" json:"level_scheme"`
	Document    datatypes.JSON `gorm:"column:document;not null" json:"document"`
	Checksum    string         `gorm:"column:checksum;not null" json:"checksum"`
	Source      string         `gorm:"column:source" json:"source"`
	Generation  string         `gorm:"column:generation;index" json:"generation"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (ContentRecord) TableName() string { return "content_record" }

// NewContentRecord builds the mirror row for rec at position pos.
func NewContentRecord(rec *EducationalContent, pos int, source, generation string) (*ContentRecord, error) {
	doc, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal content %s: %w", rec.ID, err)
	}
	sum := sha256.Sum256(doc)
	return &ContentRecord{
		ID:          rec.ID,
		Position:    pos,
		Type:        string(rec.Type),
		Name:        rec.Name,
		Status:      string(rec.Status),
		Version:     rec.Version,
		LevelScheme: string(rec.LevelScheme),
		Document:    datatypes.JSON(doc),
		Checksum:    hex.EncodeToString(sum[:]),
		Source:      source,
		Generation:  generation,
	}, nil
}

// Entry decodes the stored document so it can be validated again.
func (r *ContentRecord) Entry() (Entry, error) {
	e, err := Decode([]byte(r.Document))
	if err != nil {
		return Entry{}, fmt.Errorf("content_record %s: %w", r.ID, err)
	}
	e.Source = "content_record:" + r.ID
	return e, nil
}
