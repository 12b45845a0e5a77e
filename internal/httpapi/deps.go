package httpapi

import (
	"database/sql"

	"outreach-engine/internal/events"
)

type Deps struct {
	DB *sql.DB

	Hub *events.Hub
}
