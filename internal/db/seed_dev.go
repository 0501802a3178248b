package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// DevPassword is the password of every seeded demo account.
const DevPassword = "campusgate"

type SeedUser struct {
	Code    string
	Name    string
	Email   string
	Program string
	Role    string
}

// DevUsers are created by SeedDev. A1B2C3 is the member badge used in the
// README walkthrough.
var DevUsers = []SeedUser{
	{Code: "ADM001", Name: "Admin", Email: "admin@campus.test", Program: "Sistemas", Role: "admin"},
	{Code: "STF001", Name: "Guardia", Email: "guardia@campus.test", Program: "Seguridad", Role: "staff"},
	{Code: "A1B2C3", Name: "Ana", Email: "ana@campus.test", Program: "Ingenieria", Role: "member"},
}

// SeedDev inserts the demo accounts, leaving existing rows alone.
func SeedDev(ctx context.Context, db *sql.DB) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(DevPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed hash: %w", err)
	}
	now := time.Now().UTC().UnixMilli()

	for _, u := range DevUsers {
		if _, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO users(codigo_barra, nombre, correo, carrera, rol, password_hash, created_at_ms)
VALUES (?, ?, ?, ?, ?, ?, ?);`,
			u.Code, u.Name, u.Email, u.Program, u.Role, string(hash), now,
		); err != nil {
			return fmt.Errorf("seed user %s: %w", u.Code, err)
		}
	}
	return nil
}
