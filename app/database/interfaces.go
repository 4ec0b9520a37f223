package database

import (
	"time"
)

type TabRepository interface {
	Insert(ownerID int, tab NewTab) (string, error)
	UpdateSummary(id string, ownerID int, summary string, generatedAt time.Time) (bool, error)
	UpdateContent(id string, ownerID int, content string) (bool, error)
	List(ownerID, limit, offset int) ([]Tab, error)
	Count(ownerID int) (int, error)
	Get(id string, ownerID int) (*Tab, error)
	Delete(id string, ownerID int) (bool, error)
	ListRange(ownerID int, start, end time.Time) ([]Tab, error)
}

type DigestRepository interface {
	Insert(ownerID int, startDate, endDate time.Time, content string, tabCount int) (*Digest, error)
	List(ownerID int) ([]Digest, error)
	Get(id string, ownerID int) (*Digest, error)
	Delete(id string, ownerID int) (bool, error)
}
