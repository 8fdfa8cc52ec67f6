package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Patient строка архива пациентов
type Patient struct {
	ID         int    `json:"patient_id"`
	BoxNumber  string `json:"box_number"`
	Name       string `json:"name"`
	DOB        string `json:"dob"`
	LastVisit  string `json:"last_visit"`
	DeleteFlag bool   `json:"delete_flag"`
}

// InsertOutcome итог попытки вставки пациента
type InsertOutcome string

const (
	InsertedNew        InsertOutcome = "inserted"           // новой записи не было, вставлена
	AlreadyExists      InsertOutcome = "already_exists"     // имя и дата совпали с существующей
	PossibleDuplicate  InsertOutcome = "possible_duplicate" // то же имя, другая дата - на ручное ревью
	FlaggedForShredder InsertOutcome = "flagged_for_shred"  // срок хранения истек
)

// PatientsDB sqlite-архив пациентов. Владеет схемой таблицы patients
// и правилами дедупликации при вставке.
type PatientsDB struct {
	conn *sql.DB
}

// NewPatientsDB открывает архив и накатывает схему
func NewPatientsDB(path string) (*PatientsDB, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open patients database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping patients database: %w", err)
	}

	db := &PatientsDB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// migrate создает таблицу patients, если ее еще нет
func (db *PatientsDB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS patients (
		patient_id INTEGER PRIMARY KEY AUTOINCREMENT,
		box_number TEXT NOT NULL,
		name TEXT NOT NULL,
		dob TEXT NOT NULL,
		last_visit TEXT,
		delete_flag INTEGER DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_patients_name ON patients(name);
	CREATE INDEX IF NOT EXISTS idx_patients_box ON patients(box_number);
	`
	if _, err := db.conn.Exec(schema); err != nil {
		return fmt.Errorf("failed to create patients schema: %w", err)
	}
	return nil
}

// Close закрывает соединение с архивом
func (db *PatientsDB) Close() error {
	return db.conn.Close()
}

// InsertPatient вставляет пациента, если такой записи еще нет.
// Совпадение имени и даты рождения - та же запись; совпадение только
// имени помечается как возможный дубликат и уходит на ручное ревью.
// Записи с истекшим сроком хранения вместо вставки помечаются к шредингу.
func (db *PatientsDB) InsertPatient(box, name, dob, lastVisit string) (InsertOutcome, error) {
	if lastVisit != "" && lastVisit < time.Now().Format("2006-01-02") {
		if err := db.flagForShred(name, dob); err != nil {
			return "", err
		}
		slog.Info("запись помечена к шредингу по сроку хранения",
			"name", name,
			"last_visit", lastVisit,
		)
		return FlaggedForShredder, nil
	}

	rows, err := db.conn.Query(`SELECT dob FROM patients WHERE name = ?`, name)
	if err != nil {
		return "", fmt.Errorf("failed to query patients by name: %w", err)
	}
	defer rows.Close()

	sameName := false
	for rows.Next() {
		var existingDOB string
		if err := rows.Scan(&existingDOB); err != nil {
			return "", fmt.Errorf("failed to scan patient row: %w", err)
		}
		if existingDOB == dob {
			return AlreadyExists, nil
		}
		sameName = true
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("failed to iterate patient rows: %w", err)
	}

	if sameName {
		slog.Warn("возможный дубликат: то же имя, другая дата рождения",
			"name", name,
			"dob", dob,
		)
		return PossibleDuplicate, nil
	}

	_, err = db.conn.Exec(
		`INSERT INTO patients (box_number, name, dob, last_visit) VALUES (?, ?, ?, ?)`,
		box, name, dob, lastVisit,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert patient: %w", err)
	}
	return InsertedNew, nil
}

// flagForShred помечает запись к уничтожению
func (db *PatientsDB) flagForShred(name, dob string) error {
	_, err := db.conn.Exec(
		`UPDATE patients SET delete_flag = 1 WHERE name = ? AND dob = ?`,
		name, dob,
	)
	if err != nil {
		return fmt.Errorf("failed to flag patient for shred: %w", err)
	}
	return nil
}

// DeletePatient удаляет пациента по имени и дате рождения
func (db *PatientsDB) DeletePatient(name, dob string) error {
	result, err := db.conn.Exec(`DELETE FROM patients WHERE name = ? AND dob = ?`, name, dob)
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("patient %q (%s) not found", name, dob)
	}
	return nil
}

// SearchPatients ищет пациентов по части имени и опциональной дате
func (db *PatientsDB) SearchPatients(namePartial, dob string) ([]Patient, error) {
	query := `SELECT patient_id, box_number, name, dob, COALESCE(last_visit, ''), delete_flag
		FROM patients WHERE name LIKE ?`
	args := []interface{}{"%" + namePartial + "%"}
	if dob != "" {
		query += ` AND dob = ?`
		args = append(args, dob)
	}
	query += ` ORDER BY patient_id`

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search patients: %w", err)
	}
	defer rows.Close()

	var patients []Patient
	for rows.Next() {
		var p Patient
		var deleteFlag int
		if err := rows.Scan(&p.ID, &p.BoxNumber, &p.Name, &p.DOB, &p.LastVisit, &deleteFlag); err != nil {
			return nil, fmt.Errorf("failed to scan patient row: %w", err)
		}
		p.DeleteFlag = deleteFlag != 0
		patients = append(patients, p)
	}
	return patients, rows.Err()
}

// FindDuplicates возвращает все записи с данным именем, если их больше одной
func (db *PatientsDB) FindDuplicates(name string) ([]Patient, error) {
	patients, err := db.SearchPatients(name, "")
	if err != nil {
		return nil, err
	}
	exact := patients[:0]
	for _, p := range patients {
		if p.Name == name {
			exact = append(exact, p)
		}
	}
	if len(exact) <= 1 {
		return nil, nil
	}
	return exact, nil
}
