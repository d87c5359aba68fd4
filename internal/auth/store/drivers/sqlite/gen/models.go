package gen

import (
	"time"
)

type Principal struct {
	ID         string
	Username   string
	SecretHash string
	CreatedAt  time.Time
}
