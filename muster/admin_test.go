package muster_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muster/personnel-engine/muster"
	"github.com/muster/personnel-engine/session"
)

// =============================================================================
// USER ADMINISTRATION
// =============================================================================

func TestAddUser_PasswordComplexity(t *testing.T) {
	svc, _ := newTestService(t, jan1)
	ctx := context.Background()

	cases := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"too short", "Ab1", true},
		{"no uppercase", "password1", true},
		{"no lowercase", "PASSWORD1", true},
		{"no digit", "PasswordX", true},
		{"valid", "Secret123", false},
	}
	for i, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.AddUser(ctx, muster.User{Username: fmt.Sprintf("user-%d", i)}, tc.password)
			if tc.wantErr {
				assert.True(t, muster.IsValidation(err), "expected a validation error, got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAddUser_DuplicateUsernameRejected(t *testing.T) {
	svc, _ := newTestService(t, jan1)
	ctx := context.Background()

	require.NoError(t, svc.AddUser(ctx, muster.User{Username: "somchai"}, "Secret123"))
	err := svc.AddUser(ctx, muster.User{Username: "somchai"}, "Secret456")
	assert.ErrorIs(t, err, muster.ErrUserExists)
}

func TestAddUser_CredentialsVerifiable(t *testing.T) {
	svc, store := newTestService(t, jan1)
	ctx := context.Background()

	require.NoError(t, svc.AddUser(ctx, muster.User{Username: "somchai"}, "Secret123"))

	u, err := store.GetUser(ctx, "somchai")
	require.NoError(t, err)
	require.NotNil(t, u)

	hasher := session.Hasher{}
	assert.True(t, hasher.Verify("Secret123", u.Salt, u.Key))
	assert.False(t, hasher.Verify("WrongPass1", u.Salt, u.Key))
}

func TestUpdateUser_RotatesPasswordOnlyWhenGiven(t *testing.T) {
	// GIVEN: an existing account
	// WHEN: updating the profile without a password, then with one
	// THEN: the key survives the first update and changes on the second

	svc, store := newTestService(t, jan1)
	ctx := context.Background()

	require.NoError(t, svc.AddUser(ctx, muster.User{Username: "somchai"}, "Secret123"))
	before, err := store.GetUser(ctx, "somchai")
	require.NoError(t, err)

	require.NoError(t, svc.UpdateUser(ctx, muster.User{Username: "somchai", Rank: "น.ท.", Role: "user"}, ""))
	after, err := store.GetUser(ctx, "somchai")
	require.NoError(t, err)
	assert.Equal(t, before.Key, after.Key)
	assert.Equal(t, "น.ท.", after.Rank)

	require.NoError(t, svc.UpdateUser(ctx, muster.User{Username: "somchai", Rank: "น.ท.", Role: "user"}, "Rotated456"))
	rotated, err := store.GetUser(ctx, "somchai")
	require.NoError(t, err)
	assert.NotEqual(t, before.Key, rotated.Key)
	assert.True(t, session.Hasher{}.Verify("Rotated456", rotated.Salt, rotated.Key))
}

func TestDeleteUser_PrimaryAdminProtected(t *testing.T) {
	svc, _ := newTestService(t, jan1)
	ctx := context.Background()

	require.NoError(t, svc.AddUser(ctx, muster.User{Username: "admin", Role: muster.RoleAdmin}, "Secret123"))
	require.NoError(t, svc.AddUser(ctx, muster.User{Username: "somchai"}, "Secret123"))

	assert.ErrorIs(t, svc.DeleteUser(ctx, "admin"), muster.ErrProtectedUser)
	assert.NoError(t, svc.DeleteUser(ctx, "somchai"))
	assert.ErrorIs(t, svc.DeleteUser(ctx, "somchai"), muster.ErrUserNotFound)
}

func TestUsersPage_Pagination(t *testing.T) {
	svc, _ := newTestService(t, jan1)
	ctx := context.Background()

	for i := 0; i < 17; i++ {
		require.NoError(t, svc.AddUser(ctx, muster.User{Username: fmt.Sprintf("user-%02d", i)}, "Secret123"))
	}

	page1, total, err := svc.UsersPage(ctx, "", 1)
	require.NoError(t, err)
	assert.Equal(t, 17, total)
	assert.Len(t, page1, muster.PageSize)

	page2, _, err := svc.UsersPage(ctx, "", 2)
	require.NoError(t, err)
	assert.Len(t, page2, 2)
}

// =============================================================================
// PERSONNEL ADMINISTRATION
// =============================================================================

func TestImportPersonnel_ReplacesRoster(t *testing.T) {
	svc, _ := newTestService(t, jan1)
	ctx := context.Background()

	seedPerson(t, svc, "น.อ.", "เก่าหนึ่ง", "กบว.")
	seedPerson(t, svc, "จ.อ.", "เก่าสอง", "กปก.")

	count, err := svc.ImportPersonnel(ctx, []muster.Person{{
		Rank: "น.ท.", FirstName: "ใหม่", LastName: "ทดสอบ",
		Position: "เจ้าหน้าที่", Specialty: "ทั่วไป", Department: "กบว.",
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	people, total, err := svc.PersonnelPage(ctx, "", "", 1, true)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, people, 1)
	assert.Equal(t, "ใหม่", people[0].FirstName)
}

func TestImportPersonnel_CascadesLedger(t *testing.T) {
	// Replacing the roster must not leave orphaned availability records.

	svc, _ := newTestService(t, jan1)
	ctx := context.Background()

	p := seedPerson(t, svc, "น.อ.", "หนึ่ง", "กบว.")
	_, err := svc.SubmitWeekly(ctx, "กบว.", "rep", []muster.ReportItem{
		leaveItem(p, "ลา", "2024-01-01", "2024-01-10"),
	})
	require.NoError(t, err)

	_, err = svc.ImportPersonnel(ctx, []muster.Person{{
		Rank: "น.ท.", FirstName: "ใหม่", LastName: "ทดสอบ",
		Position: "เจ้าหน้าที่", Specialty: "ทั่วไป", Department: "กบว.",
	}})
	require.NoError(t, err)

	statuses, err := svc.ActiveStatusesFor(ctx, "กบว.", svc.Today())
	require.NoError(t, err)
	assert.Empty(t, statuses.Unavailable)
}

func TestAddPerson_RequiresAllFields(t *testing.T) {
	svc, _ := newTestService(t, jan1)

	_, err := svc.AddPerson(context.Background(), muster.Person{Rank: "น.อ.", FirstName: "ขาดข้อมูล"})
	assert.True(t, muster.IsValidation(err))
}

func TestDeletePerson_CascadesAvailability(t *testing.T) {
	svc, _ := newTestService(t, jan1)
	ctx := context.Background()

	p := seedPerson(t, svc, "น.อ.", "หนึ่ง", "กบว.")
	_, err := svc.SubmitWeekly(ctx, "กบว.", "rep", []muster.ReportItem{
		leaveItem(p, "ลา", "2024-01-01", "2024-01-10"),
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeletePerson(ctx, p.ID))

	statuses, err := svc.ActiveStatusesFor(ctx, "กบว.", svc.Today())
	require.NoError(t, err)
	assert.Empty(t, statuses.Unavailable)
	assert.Zero(t, statuses.Total)
}

func TestPersonnelPage_FetchAllIncludesEveryRankCategory(t *testing.T) {
	// The weekly submission form fetches the full roster: officers,
	// non-commissioned and civilians alike. No rank restriction applies.

	svc, _ := newTestService(t, jan1)
	ctx := context.Background()

	officer := seedPerson(t, svc, "น.อ.", "สัญญาบัตร", "กบว.")
	nco := seedPerson(t, svc, "จ.อ.", "ประทวน", "กบว.")
	civilian := seedPerson(t, svc, "นาย", "พลเรือน", "กบว.")

	people, total, err := svc.PersonnelPage(ctx, "กบว.", "", 1, true)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, people, 3)

	ids := make(map[string]bool, len(people))
	for _, p := range people {
		ids[p.ID] = true
	}
	assert.True(t, ids[officer.ID])
	assert.True(t, ids[nco.ID])
	assert.True(t, ids[civilian.ID])
}

func TestPersonnelPage_SearchByPosition(t *testing.T) {
	svc, _ := newTestService(t, jan1)
	ctx := context.Background()

	_, err := svc.AddPerson(ctx, muster.Person{
		Rank: "น.อ.", FirstName: "หนึ่ง", LastName: "ทดสอบ",
		Position: "นายทหารสื่อสาร", Specialty: "สื่อสาร", Department: "กบว.",
	})
	require.NoError(t, err)
	seedPerson(t, svc, "จ.อ.", "สอง", "กบว.")

	people, total, err := svc.PersonnelPage(ctx, "กบว.", "สื่อสาร", 1, false)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, people, 1)
	assert.Equal(t, "หนึ่ง", people[0].FirstName)
}
