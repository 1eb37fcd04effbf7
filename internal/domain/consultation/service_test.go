package consultation

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/AdhamBanishamsah/dronline-connect-sub000/internal/domain/disease"
	"github.com/AdhamBanishamsah/dronline-connect-sub000/internal/domain/identity"
	"github.com/AdhamBanishamsah/dronline-connect-sub000/internal/platform/auth"
	"github.com/AdhamBanishamsah/dronline-connect-sub000/internal/platform/i18n"
)

// -- Mock Repositories --

type mockConsultationRepo struct {
	store    map[uuid.UUID]*Consultation
	comments map[uuid.UUID][]*Comment
	seq      int
}

func newMockConsultationRepo() *mockConsultationRepo {
	return &mockConsultationRepo{
		store:    make(map[uuid.UUID]*Consultation),
		comments: make(map[uuid.UUID][]*Comment),
	}
}

func (m *mockConsultationRepo) Create(_ context.Context, c *Consultation) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	m.seq++
	c.CreatedAt = time.Now().Add(time.Duration(m.seq) * time.Millisecond)
	c.UpdatedAt = c.CreatedAt
	m.store[c.ID] = c
	return nil
}

func (m *mockConsultationRepo) GetByID(_ context.Context, id uuid.UUID) (*Consultation, error) {
	c, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

func (m *mockConsultationRepo) Update(_ context.Context, c *Consultation) error {
	if _, ok := m.store[c.ID]; !ok {
		return ErrNotFound
	}
	c.UpdatedAt = time.Now()
	m.store[c.ID] = c
	return nil
}

func (m *mockConsultationRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.store, id)
	delete(m.comments, id)
	return nil
}

func sortNewestFirst(r []*Consultation) {
	sort.Slice(r, func(i, j int) bool { return r[i].CreatedAt.After(r[j].CreatedAt) })
}

func (m *mockConsultationRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Consultation, int, error) {
	var r []*Consultation
	for _, c := range m.store {
		if c.PatientID == patientID {
			r = append(r, c)
		}
	}
	sortNewestFirst(r)
	return r, len(r), nil
}

func (m *mockConsultationRepo) ListWorklist(_ context.Context, doctorID uuid.UUID, limit, offset int) ([]*Consultation, int, error) {
	var r []*Consultation
	for _, c := range m.store {
		assigned := c.DoctorID != nil && *c.DoctorID == doctorID
		open := c.DoctorID == nil && c.Status == StatusPending
		if assigned || open {
			r = append(r, c)
		}
	}
	sortNewestFirst(r)
	return r, len(r), nil
}

func (m *mockConsultationRepo) ListAll(_ context.Context, status string, limit, offset int) ([]*Consultation, int, error) {
	var r []*Consultation
	for _, c := range m.store {
		if status == "" || c.Status == status {
			r = append(r, c)
		}
	}
	sortNewestFirst(r)
	return r, len(r), nil
}

func (m *mockConsultationRepo) AddComment(_ context.Context, cm *Comment) error {
	if cm.ID == uuid.Nil {
		cm.ID = uuid.New()
	}
	cm.CreatedAt = time.Now()
	m.comments[cm.ConsultationID] = append(m.comments[cm.ConsultationID], cm)
	return nil
}

func (m *mockConsultationRepo) ListComments(_ context.Context, consultationID uuid.UUID) ([]*Comment, error) {
	return m.comments[consultationID], nil
}

type mockUserLookup struct {
	store map[uuid.UUID]*identity.User
}

func (m *mockUserLookup) GetByID(_ context.Context, id uuid.UUID) (*identity.User, error) {
	u, ok := m.store[id]
	if !ok {
		return nil, identity.ErrNotFound
	}
	return u, nil
}

type mockDiseaseLookup struct {
	store map[uuid.UUID]*disease.Disease
}

func (m *mockDiseaseLookup) GetByID(_ context.Context, id uuid.UUID) (*disease.Disease, error) {
	d, ok := m.store[id]
	if !ok {
		return nil, disease.ErrNotFound
	}
	return d, nil
}

type fixture struct {
	svc      *Service
	repo     *mockConsultationRepo
	users    *mockUserLookup
	diseases *mockDiseaseLookup

	patient  auth.Actor
	doctor   auth.Actor
	admin    auth.Actor
	diseaseA uuid.UUID
}

func newFixture() *fixture {
	repo := newMockConsultationRepo()
	users := &mockUserLookup{store: make(map[uuid.UUID]*identity.User)}
	diseases := &mockDiseaseLookup{store: make(map[uuid.UUID]*disease.Disease)}

	f := &fixture{
		svc:      NewService(repo, users, diseases),
		repo:     repo,
		users:    users,
		diseases: diseases,
		patient:  auth.Actor{ID: uuid.New(), Role: auth.RolePatient},
		doctor:   auth.Actor{ID: uuid.New(), Role: auth.RoleDoctor},
		admin:    auth.Actor{ID: uuid.New(), Role: auth.RoleAdmin},
	}
	users.store[f.patient.ID] = &identity.User{ID: f.patient.ID, Role: auth.RolePatient, IsApproved: true}
	users.store[f.doctor.ID] = &identity.User{ID: f.doctor.ID, Role: auth.RoleDoctor, IsApproved: true}
	users.store[f.admin.ID] = &identity.User{ID: f.admin.ID, Role: auth.RoleAdmin, IsApproved: true}

	d := &disease.Disease{ID: uuid.New(), NameEN: "Influenza", NameAR: "إنفلونزا"}
	diseases.store[d.ID] = d
	f.diseaseA = d.ID
	return f
}

func (f *fixture) create(t *testing.T) *Consultation {
	t.Helper()
	c, err := f.svc.Create(context.Background(), f.patient, CreateInput{
		DiseaseID:   f.diseaseA,
		Description: "persistent cough",
		Symptoms:    "cough, fever",
	})
	if err != nil {
		t.Fatalf("create consultation: %v", err)
	}
	return c
}

// -- Service Tests --

func TestCreate_StartsPendingUnassigned(t *testing.T) {
	f := newFixture()
	c := f.create(t)

	if c.Status != StatusPending {
		t.Errorf("expected pending, got %s", c.Status)
	}
	if c.DoctorID != nil {
		t.Error("new consultation must be unassigned")
	}
	if c.PatientID != f.patient.ID {
		t.Error("patient_id must be the acting patient")
	}
	comments, _ := f.repo.ListComments(context.Background(), c.ID)
	if len(comments) != 0 {
		t.Error("new consultation must have no comments")
	}
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture()

	if _, err := f.svc.Create(context.Background(), f.doctor, CreateInput{DiseaseID: f.diseaseA, Description: "x"}); !errors.Is(err, ErrForbidden) {
		t.Errorf("doctor creating: expected ErrForbidden, got %v", err)
	}
	if _, err := f.svc.Create(context.Background(), f.patient, CreateInput{DiseaseID: f.diseaseA, Description: "  "}); !errors.Is(err, ErrValidation) {
		t.Errorf("empty description: expected ErrValidation, got %v", err)
	}
	if _, err := f.svc.Create(context.Background(), f.patient, CreateInput{DiseaseID: uuid.New(), Description: "x"}); !errors.Is(err, ErrValidation) {
		t.Errorf("unknown disease: expected ErrValidation, got %v", err)
	}
	six := []string{"a", "b", "c", "d", "e", "f"}
	if _, err := f.svc.Create(context.Background(), f.patient, CreateInput{DiseaseID: f.diseaseA, Description: "x", Images: six}); !errors.Is(err, ErrValidation) {
		t.Errorf("too many images: expected ErrValidation, got %v", err)
	}
}

func TestListForActor_DoctorWorklistIsDuplicateFreeUnion(t *testing.T) {
	f := newFixture()

	mine := f.create(t)
	if _, err := f.svc.Assign(context.Background(), f.doctor, mine.ID, f.doctor.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	open := f.create(t)

	other := auth.Actor{ID: uuid.New(), Role: auth.RoleDoctor}
	f.users.store[other.ID] = &identity.User{ID: other.ID, Role: auth.RoleDoctor, IsApproved: true}
	taken := f.create(t)
	if _, err := f.svc.Assign(context.Background(), other, taken.ID, other.ID); err != nil {
		t.Fatalf("assign other: %v", err)
	}

	items, total, err := f.svc.ListForActor(context.Background(), f.doctor, "", 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected assigned + open = 2, got %d", total)
	}
	seen := map[uuid.UUID]bool{}
	for _, c := range items {
		if seen[c.ID] {
			t.Fatal("worklist contains duplicates")
		}
		seen[c.ID] = true
	}
	if !seen[mine.ID] || !seen[open.ID] {
		t.Error("worklist missing expected entries")
	}
	if seen[taken.ID] {
		t.Error("worklist must not include another doctor's consultation")
	}
}

func TestListForActor_PatientSeesOwnNewestFirst(t *testing.T) {
	f := newFixture()
	first := f.create(t)
	second := f.create(t)

	items, _, err := f.svc.ListForActor(context.Background(), f.patient, "", 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2, got %d", len(items))
	}
	if items[0].ID != second.ID || items[1].ID != first.ID {
		t.Error("expected newest first")
	}
}

func TestListForActor_AdminStatusFilter(t *testing.T) {
	f := newFixture()
	f.create(t)
	c := f.create(t)
	if _, err := f.svc.Assign(context.Background(), f.doctor, c.ID, f.doctor.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	items, _, err := f.svc.ListForActor(context.Background(), f.admin, StatusPending, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].Status != StatusPending {
		t.Errorf("expected one pending consultation, got %d", len(items))
	}

	if _, _, err := f.svc.ListForActor(context.Background(), f.admin, "bogus", 20, 0); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for unknown status, got %v", err)
	}
}

func TestAssign_DoctorClaimForcesInProgress(t *testing.T) {
	f := newFixture()
	c := f.create(t)

	got, err := f.svc.Assign(context.Background(), f.doctor, c.ID, f.doctor.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != StatusInProgress {
		t.Errorf("assign must force in_progress, got %s", got.Status)
	}
	if got.DoctorID == nil || *got.DoctorID != f.doctor.ID {
		t.Error("doctor_id not set")
	}
}

func TestAssign_UnapprovedDoctorForbidden(t *testing.T) {
	f := newFixture()
	c := f.create(t)

	newbie := auth.Actor{ID: uuid.New(), Role: auth.RoleDoctor}
	f.users.store[newbie.ID] = &identity.User{ID: newbie.ID, Role: auth.RoleDoctor, IsApproved: false}

	if _, err := f.svc.Assign(context.Background(), newbie, c.ID, newbie.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestAssign_TakenConsultationConflicts(t *testing.T) {
	f := newFixture()
	c := f.create(t)
	if _, err := f.svc.Assign(context.Background(), f.doctor, c.ID, f.doctor.ID); err != nil {
		t.Fatalf("first assign: %v", err)
	}

	other := auth.Actor{ID: uuid.New(), Role: auth.RoleDoctor}
	f.users.store[other.ID] = &identity.User{ID: other.ID, Role: auth.RoleDoctor, IsApproved: true}
	if _, err := f.svc.Assign(context.Background(), other, c.ID, other.ID); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestAssign_DoctorCannotClaimForAnother(t *testing.T) {
	f := newFixture()
	c := f.create(t)
	other := uuid.New()
	f.users.store[other] = &identity.User{ID: other, Role: auth.RoleDoctor, IsApproved: true}

	if _, err := f.svc.Assign(context.Background(), f.doctor, c.ID, other); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestAssign_AdminForceAssign(t *testing.T) {
	f := newFixture()
	c := f.create(t)
	if _, err := f.svc.Assign(context.Background(), f.doctor, c.ID, f.doctor.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	other := uuid.New()
	f.users.store[other] = &identity.User{ID: other, Role: auth.RoleDoctor, IsApproved: false}

	got, err := f.svc.Assign(context.Background(), f.admin, c.ID, other)
	if err != nil {
		t.Fatalf("admin force-assign should succeed, got %v", err)
	}
	if got.DoctorID == nil || *got.DoctorID != other {
		t.Error("force-assign did not move the consultation")
	}
}

func TestAssign_TargetMustBeDoctor(t *testing.T) {
	f := newFixture()
	c := f.create(t)
	if _, err := f.svc.Assign(context.Background(), f.admin, c.ID, f.patient.ID); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestUpdateStatus_ForwardOnlyForDoctors(t *testing.T) {
	f := newFixture()
	c := f.create(t)
	if _, err := f.svc.Assign(context.Background(), f.doctor, c.ID, f.doctor.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	got, err := f.svc.UpdateStatus(context.Background(), f.doctor, c.ID, StatusCompleted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != StatusCompleted {
		t.Errorf("expected completed, got %s", got.Status)
	}

	if _, err := f.svc.UpdateStatus(context.Background(), f.doctor, c.ID, StatusPending); !errors.Is(err, ErrValidation) {
		t.Errorf("backwards move: expected ErrValidation, got %v", err)
	}

	// admin may rewind
	got, err = f.svc.UpdateStatus(context.Background(), f.admin, c.ID, StatusPending)
	if err != nil {
		t.Fatalf("admin rewind: %v", err)
	}
	if got.Status != StatusPending {
		t.Errorf("expected pending, got %s", got.Status)
	}
}

func TestUpdateStatus_OnlyAssignedDoctor(t *testing.T) {
	f := newFixture()
	c := f.create(t)
	if _, err := f.svc.UpdateStatus(context.Background(), f.doctor, c.ID, StatusInProgress); !errors.Is(err, ErrForbidden) {
		t.Errorf("unassigned doctor: expected ErrForbidden, got %v", err)
	}
	if _, err := f.svc.UpdateStatus(context.Background(), f.patient, c.ID, StatusCompleted); !errors.Is(err, ErrForbidden) {
		t.Errorf("patient: expected ErrForbidden, got %v", err)
	}
}

func TestAddComment_CapturesAuthorRole(t *testing.T) {
	f := newFixture()
	c := f.create(t)
	if _, err := f.svc.Assign(context.Background(), f.doctor, c.ID, f.doctor.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	cm, err := f.svc.AddComment(context.Background(), f.doctor, c.ID, "please send a photo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cm.AuthorRole != auth.RoleDoctor {
		t.Errorf("expected author_role doctor, got %s", cm.AuthorRole)
	}
	if cm.AuthorID != f.doctor.ID {
		t.Error("author_id not set")
	}

	cm, err = f.svc.AddComment(context.Background(), f.patient, c.ID, "attached")
	if err != nil {
		t.Fatalf("patient comment: %v", err)
	}
	if cm.AuthorRole != auth.RolePatient {
		t.Errorf("expected author_role patient, got %s", cm.AuthorRole)
	}
}

func TestAddComment_ParticipantsOnly(t *testing.T) {
	f := newFixture()
	c := f.create(t)

	stranger := auth.Actor{ID: uuid.New(), Role: auth.RolePatient}
	if _, err := f.svc.AddComment(context.Background(), stranger, c.ID, "hello"); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
	if _, err := f.svc.AddComment(context.Background(), f.patient, c.ID, "   "); !errors.Is(err, ErrValidation) {
		t.Errorf("empty comment: expected ErrValidation, got %v", err)
	}
	if _, err := f.svc.AddComment(context.Background(), f.admin, c.ID, "admin note"); err != nil {
		t.Errorf("admin should be able to comment, got %v", err)
	}
}

func TestGetDetail_AccessAndContent(t *testing.T) {
	f := newFixture()
	c := f.create(t)
	if _, err := f.svc.AddComment(context.Background(), f.patient, c.ID, "first"); err != nil {
		t.Fatalf("comment: %v", err)
	}

	d, err := f.svc.GetDetail(context.Background(), f.patient, c.ID, i18n.LangArabic)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.DiseaseName != "إنفلونزا" {
		t.Errorf("expected localized disease name, got %q", d.DiseaseName)
	}
	if d.Direction != "rtl" {
		t.Errorf("expected rtl, got %q", d.Direction)
	}
	if len(d.Comments) != 1 {
		t.Errorf("expected 1 comment, got %d", len(d.Comments))
	}

	stranger := auth.Actor{ID: uuid.New(), Role: auth.RolePatient}
	if _, err := f.svc.GetDetail(context.Background(), stranger, c.ID, i18n.LangEnglish); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
	if _, err := f.svc.GetDetail(context.Background(), f.admin, uuid.New(), i18n.LangEnglish); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetDetail_DoctorSeesUnassignedPendingOnly(t *testing.T) {
	f := newFixture()
	c := f.create(t)

	if _, err := f.svc.GetDetail(context.Background(), f.doctor, c.ID, i18n.LangEnglish); err != nil {
		t.Errorf("unassigned pending should be visible, got %v", err)
	}

	other := auth.Actor{ID: uuid.New(), Role: auth.RoleDoctor}
	f.users.store[other.ID] = &identity.User{ID: other.ID, Role: auth.RoleDoctor, IsApproved: true}
	if _, err := f.svc.Assign(context.Background(), other, c.ID, other.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := f.svc.GetDetail(context.Background(), f.doctor, c.ID, i18n.LangEnglish); !errors.Is(err, ErrForbidden) {
		t.Errorf("another doctor's consultation: expected ErrForbidden, got %v", err)
	}
}

func TestUpdateFields_PatientAttachments(t *testing.T) {
	f := newFixture()
	c := f.create(t)

	if _, err := f.svc.UpdateFields(context.Background(), f.patient, c.ID, UpdateInput{}); !errors.Is(err, ErrValidation) {
		t.Errorf("no keys: expected ErrValidation, got %v", err)
	}

	imgs := []string{"uri-1", "uri-2"}
	memo := "memo-uri"
	got, err := f.svc.UpdateFields(context.Background(), f.patient, c.ID, UpdateInput{Images: &imgs, VoiceMemo: &memo})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Images) != 2 || got.VoiceMemo == nil || *got.VoiceMemo != "memo-uri" {
		t.Errorf("attachments not applied: %+v", got)
	}

	six := []string{"a", "b", "c", "d", "e", "f"}
	if _, err := f.svc.UpdateFields(context.Background(), f.patient, c.ID, UpdateInput{Images: &six}); !errors.Is(err, ErrValidation) {
		t.Errorf("image cap: expected ErrValidation, got %v", err)
	}

	status := StatusCompleted
	if _, err := f.svc.UpdateFields(context.Background(), f.patient, c.ID, UpdateInput{Status: &status}); !errors.Is(err, ErrForbidden) {
		t.Errorf("admin field by patient: expected ErrForbidden, got %v", err)
	}
}

func TestUpdateFields_CompletedLocksPatientEdits(t *testing.T) {
	f := newFixture()
	c := f.create(t)
	if _, err := f.svc.Assign(context.Background(), f.doctor, c.ID, f.doctor.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := f.svc.UpdateStatus(context.Background(), f.doctor, c.ID, StatusCompleted); err != nil {
		t.Fatalf("complete: %v", err)
	}

	imgs := []string{"late"}
	if _, err := f.svc.UpdateFields(context.Background(), f.patient, c.ID, UpdateInput{Images: &imgs}); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestUpdateFields_AdminFields(t *testing.T) {
	f := newFixture()
	c := f.create(t)

	d2 := &disease.Disease{ID: uuid.New(), NameEN: "Asthma", NameAR: "الربو"}
	f.diseases.store[d2.ID] = d2
	status := StatusInProgress

	got, err := f.svc.UpdateFields(context.Background(), f.admin, c.ID, UpdateInput{
		DiseaseID: &d2.ID,
		DoctorID:  &f.doctor.ID,
		Status:    &status,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.DiseaseID != d2.ID || got.DoctorID == nil || got.Status != StatusInProgress {
		t.Errorf("admin update not applied: %+v", got)
	}
	if got.PatientID != f.patient.ID {
		t.Error("patient_id must never change")
	}
}

func TestDelete_AdminOnlyCascades(t *testing.T) {
	f := newFixture()
	c := f.create(t)
	if _, err := f.svc.AddComment(context.Background(), f.patient, c.ID, "note"); err != nil {
		t.Fatalf("comment: %v", err)
	}

	if err := f.svc.Delete(context.Background(), f.patient, c.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
	if err := f.svc.Delete(context.Background(), f.admin, c.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := f.repo.store[c.ID]; ok {
		t.Error("consultation not deleted")
	}
	if len(f.repo.comments[c.ID]) != 0 {
		t.Error("comments must be removed with the consultation")
	}
}
