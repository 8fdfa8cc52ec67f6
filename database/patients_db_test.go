package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *PatientsDB {
	t.Helper()
	db, err := NewPatientsDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func futureDate() string {
	return time.Now().AddDate(1, 0, 0).Format("2006-01-02")
}

func TestInsertPatient_New(t *testing.T) {
	db := newTestDB(t)

	outcome, err := db.InsertPatient("A1", "Ann Creel", "12/25/1990", futureDate())
	require.NoError(t, err)
	assert.Equal(t, InsertedNew, outcome)

	patients, err := db.SearchPatients("Ann", "")
	require.NoError(t, err)
	require.Len(t, patients, 1)
	assert.Equal(t, "A1", patients[0].BoxNumber)
	assert.Equal(t, "12/25/1990", patients[0].DOB)
	assert.False(t, patients[0].DeleteFlag)
}

func TestInsertPatient_AlreadyExists(t *testing.T) {
	db := newTestDB(t)

	_, err := db.InsertPatient("A1", "Ann Creel", "12/25/1990", futureDate())
	require.NoError(t, err)

	outcome, err := db.InsertPatient("A2", "Ann Creel", "12/25/1990", futureDate())
	require.NoError(t, err)
	assert.Equal(t, AlreadyExists, outcome)

	patients, err := db.SearchPatients("Ann Creel", "")
	require.NoError(t, err)
	assert.Len(t, patients, 1, "повторная вставка не плодит строк")
}

func TestInsertPatient_PossibleDuplicate(t *testing.T) {
	db := newTestDB(t)

	_, err := db.InsertPatient("A1", "Ann Creel", "12/25/1990", futureDate())
	require.NoError(t, err)

	outcome, err := db.InsertPatient("A1", "Ann Creel", "01/01/1991", futureDate())
	require.NoError(t, err)
	assert.Equal(t, PossibleDuplicate, outcome)

	patients, err := db.SearchPatients("Ann Creel", "")
	require.NoError(t, err)
	assert.Len(t, patients, 1, "подозрительная запись не вставляется до ручного ревью")
}

func TestInsertPatient_FlaggedForShredder(t *testing.T) {
	db := newTestDB(t)

	_, err := db.InsertPatient("A1", "Ann Creel", "12/25/1990", futureDate())
	require.NoError(t, err)

	outcome, err := db.InsertPatient("A1", "Ann Creel", "12/25/1990", "2010-06-01")
	require.NoError(t, err)
	assert.Equal(t, FlaggedForShredder, outcome)

	patients, err := db.SearchPatients("Ann Creel", "")
	require.NoError(t, err)
	require.Len(t, patients, 1)
	assert.True(t, patients[0].DeleteFlag)
}

func TestDeletePatient(t *testing.T) {
	db := newTestDB(t)

	_, err := db.InsertPatient("A1", "Ann Creel", "12/25/1990", futureDate())
	require.NoError(t, err)

	require.NoError(t, db.DeletePatient("Ann Creel", "12/25/1990"))

	patients, err := db.SearchPatients("Ann", "")
	require.NoError(t, err)
	assert.Empty(t, patients)

	err = db.DeletePatient("Ann Creel", "12/25/1990")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSearchPatients(t *testing.T) {
	db := newTestDB(t)

	_, err := db.InsertPatient("A1", "Ann Creel", "12/25/1990", futureDate())
	require.NoError(t, err)
	_, err = db.InsertPatient("A2", "Boris Vale", "03/04/1955", futureDate())
	require.NoError(t, err)

	// Частичное имя
	patients, err := db.SearchPatients("Creel", "")
	require.NoError(t, err)
	require.Len(t, patients, 1)
	assert.Equal(t, "Ann Creel", patients[0].Name)

	// Имя и дата
	patients, err = db.SearchPatients("Boris", "03/04/1955")
	require.NoError(t, err)
	assert.Len(t, patients, 1)

	// Дата не совпала
	patients, err = db.SearchPatients("Boris", "01/01/2000")
	require.NoError(t, err)
	assert.Empty(t, patients)
}

func TestFindDuplicates(t *testing.T) {
	db := newTestDB(t)

	_, err := db.InsertPatient("A1", "Ann Creel", "12/25/1990", futureDate())
	require.NoError(t, err)

	// Одна запись - дубликатов нет
	dups, err := db.FindDuplicates("Ann Creel")
	require.NoError(t, err)
	assert.Nil(t, dups)

	// Вторая строка с тем же именем вставляется напрямую, минуя дедупликацию
	_, err = db.conn.Exec(
		`INSERT INTO patients (box_number, name, dob) VALUES (?, ?, ?)`,
		"A2", "Ann Creel", "01/01/1991",
	)
	require.NoError(t, err)

	dups, err = db.FindDuplicates("Ann Creel")
	require.NoError(t, err)
	assert.Len(t, dups, 2)

	// Частичное совпадение имени не считается дубликатом
	dups, err = db.FindDuplicates("Ann")
	require.NoError(t, err)
	assert.Nil(t, dups)
}
