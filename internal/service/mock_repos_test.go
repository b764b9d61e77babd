package service

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"github.com/Skyler-Tan/G17--Mini-IT-project/internal/model"
	"github.com/Skyler-Tan/G17--Mini-IT-project/internal/repository"
	pkgerrors "github.com/Skyler-Tan/G17--Mini-IT-project/pkg/errors"
)

// mockStore 所有 mock Repository 共享的内存数据
// 小组成员由 users.group_id 推导，与真实数据库一致
type mockStore struct {
	users    map[string]*model.User
	subjects map[string]*model.Subject
	settings map[string]*model.ReviewSetting
	groups   map[string]*model.Group
	reviews  []model.PeerReview
	selfs    map[string]*model.SelfAssessment
	comments []model.AnonymousComment
	marks    map[string]*model.LecturerMark

	seq int
	// 注入的写入错误
	batchCreateErr error
}

func newMockStore() *mockStore {
	return &mockStore{
		users:    make(map[string]*model.User),
		subjects: make(map[string]*model.Subject),
		settings: make(map[string]*model.ReviewSetting),
		groups:   make(map[string]*model.Group),
		selfs:    make(map[string]*model.SelfAssessment),
		marks:    make(map[string]*model.LecturerMark),
	}
}

func (s *mockStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

// newMockRepository 构造不带数据库连接的 Repository 聚合（BeginTx 返回 nil）
func newMockRepository() (*repository.Repository, *mockStore) {
	st := newMockStore()
	return &repository.Repository{
		User:             &mockUserRepo{st},
		Subject:          &mockSubjectRepo{st},
		Setting:          &mockSettingRepo{st},
		Group:            &mockGroupRepo{st},
		Review:           &mockReviewRepo{st},
		SelfAssessment:   &mockSelfAssessmentRepo{st},
		AnonymousComment: &mockAnonymousCommentRepo{st},
		Mark:             &mockMarkRepo{st},
	}, st
}

// ── Mock UserRepository ──

type mockUserRepo struct{ st *mockStore }

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.st.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.UserID == "" {
		user.UserID = m.st.nextID("user")
	}
	m.st.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.st.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.st.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByLogin(_ context.Context, login string) (*model.User, error) {
	for _, u := range m.st.users {
		if u.Email == login || (u.StudentNumber != nil && *u.StudentNumber == login) {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.st.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string) error {
	delete(m.st.users, id)
	return nil
}

func (m *mockUserRepo) ListStudents(_ context.Context, groupID string) ([]model.User, error) {
	var out []model.User
	for _, u := range m.st.users {
		if u.Role != model.RoleStudent {
			continue
		}
		if groupID != "" && (u.GroupID == nil || *u.GroupID != groupID) {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockUserRepo) ListByIDs(_ context.Context, ids []string) ([]model.User, error) {
	var out []model.User
	for _, id := range ids {
		if u, ok := m.st.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *mockUserRepo) SetGroupMembers(_ context.Context, groupID string, studentIDs []string) error {
	keep := make(map[string]bool, len(studentIDs))
	for _, id := range studentIDs {
		keep[id] = true
	}
	for _, u := range m.st.users {
		if u.GroupID != nil && *u.GroupID == groupID && !keep[u.UserID] {
			u.GroupID = nil
		}
		if keep[u.UserID] {
			gid := groupID
			u.GroupID = &gid
		}
	}
	return nil
}

// ── Mock SubjectRepository ──

type mockSubjectRepo struct{ st *mockStore }

func (m *mockSubjectRepo) Create(_ context.Context, subject *model.Subject) error {
	if subject.SubjectID == "" {
		subject.SubjectID = m.st.nextID("subject")
	}
	m.st.subjects[subject.SubjectID] = subject
	return nil
}

func (m *mockSubjectRepo) GetByID(_ context.Context, id string) (*model.Subject, error) {
	s, ok := m.st.subjects[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	cp.Lecturer = m.st.users[s.LecturerID]
	cp.Setting = m.st.settings[s.SubjectID]
	return &cp, nil
}

func (m *mockSubjectRepo) GetByName(_ context.Context, name string) (*model.Subject, error) {
	for _, s := range m.st.subjects {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubjectRepo) List(ctx context.Context, lecturerID string) ([]model.Subject, error) {
	var out []model.Subject
	for id, s := range m.st.subjects {
		if lecturerID != "" && s.LecturerID != lecturerID {
			continue
		}
		cp, _ := m.GetByID(ctx, id)
		out = append(out, *cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockSubjectRepo) Delete(_ context.Context, id string) error {
	delete(m.st.subjects, id)
	return nil
}

// ── Mock ReviewSettingRepository ──

type mockSettingRepo struct{ st *mockStore }

func (m *mockSettingRepo) Get(_ context.Context, subjectID string) (*model.ReviewSetting, error) {
	if s, ok := m.st.settings[subjectID]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSettingRepo) Upsert(_ context.Context, setting *model.ReviewSetting) error {
	m.st.settings[setting.SubjectID] = setting
	return nil
}

// ── Mock GroupRepository ──

type mockGroupRepo struct{ st *mockStore }

func (m *mockGroupRepo) Create(_ context.Context, group *model.Group) error {
	for _, g := range m.st.groups {
		if g.SubjectID == group.SubjectID && g.Name == group.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	if group.GroupID == "" {
		group.GroupID = m.st.nextID("group")
	}
	m.st.groups[group.GroupID] = group
	return nil
}

func (m *mockGroupRepo) load(g *model.Group) *model.Group {
	cp := *g
	cp.Subject = m.st.subjects[g.SubjectID]
	cp.Members = nil
	for _, u := range m.st.users {
		if u.Role == model.RoleStudent && u.GroupID != nil && *u.GroupID == g.GroupID {
			cp.Members = append(cp.Members, *u)
		}
	}
	sort.Slice(cp.Members, func(i, j int) bool { return cp.Members[i].Name < cp.Members[j].Name })
	return &cp
}

func (m *mockGroupRepo) GetByID(_ context.Context, id string) (*model.Group, error) {
	g, ok := m.st.groups[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m.load(g), nil
}

func (m *mockGroupRepo) GetByName(_ context.Context, subjectID, name string) (*model.Group, error) {
	for _, g := range m.st.groups {
		if g.SubjectID == subjectID && g.Name == name {
			return g, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockGroupRepo) ListBySubject(_ context.Context, subjectID string) ([]model.Group, error) {
	var out []model.Group
	for _, g := range m.st.groups {
		if g.SubjectID == subjectID {
			out = append(out, *m.load(g))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockGroupRepo) Delete(_ context.Context, id string) error {
	for _, u := range m.st.users {
		if u.GroupID != nil && *u.GroupID == id {
			u.GroupID = nil
		}
	}
	delete(m.st.groups, id)
	return nil
}

// ── Mock PeerReviewRepository ──

type mockReviewRepo struct{ st *mockStore }

func (m *mockReviewRepo) ListByGroup(_ context.Context, groupID string) ([]model.PeerReview, error) {
	var out []model.PeerReview
	for _, r := range m.st.reviews {
		if r.GroupID == groupID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockReviewRepo) ListByReviewer(_ context.Context, reviewerID string) ([]model.PeerReview, error) {
	var out []model.PeerReview
	for _, r := range m.st.reviews {
		if r.ReviewerID == reviewerID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockReviewRepo) DeleteByReviewer(_ context.Context, reviewerID string) error {
	kept := m.st.reviews[:0]
	for _, r := range m.st.reviews {
		if r.ReviewerID != reviewerID {
			kept = append(kept, r)
		}
	}
	m.st.reviews = kept
	return nil
}

func (m *mockReviewRepo) BatchCreate(_ context.Context, reviews []model.PeerReview) error {
	if m.st.batchCreateErr != nil {
		return m.st.batchCreateErr
	}
	for i := range reviews {
		if reviews[i].ReviewID == "" {
			reviews[i].ReviewID = m.st.nextID("review")
		}
		m.st.reviews = append(m.st.reviews, reviews[i])
	}
	return nil
}

// ── Mock SelfAssessmentRepository ──

type mockSelfAssessmentRepo struct{ st *mockStore }

func (m *mockSelfAssessmentRepo) GetByStudent(_ context.Context, studentID string) (*model.SelfAssessment, error) {
	if a, ok := m.st.selfs[studentID]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSelfAssessmentRepo) ListByGroup(_ context.Context, groupID string) ([]model.SelfAssessment, error) {
	var out []model.SelfAssessment
	for _, a := range m.st.selfs {
		if a.GroupID == groupID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentID < out[j].StudentID })
	return out, nil
}

func (m *mockSelfAssessmentRepo) DeleteByStudent(_ context.Context, studentID string) error {
	delete(m.st.selfs, studentID)
	return nil
}

func (m *mockSelfAssessmentRepo) Create(_ context.Context, a *model.SelfAssessment) error {
	if a.AssessmentID == "" {
		a.AssessmentID = m.st.nextID("self")
	}
	m.st.selfs[a.StudentID] = a
	return nil
}

// ── Mock AnonymousCommentRepository ──

type mockAnonymousCommentRepo struct{ st *mockStore }

func (m *mockAnonymousCommentRepo) Create(_ context.Context, c *model.AnonymousComment) error {
	if c.CommentID == "" {
		c.CommentID = m.st.nextID("comment")
	}
	m.st.comments = append(m.st.comments, *c)
	return nil
}

func (m *mockAnonymousCommentRepo) ListByGroup(_ context.Context, groupID string) ([]model.AnonymousComment, error) {
	var out []model.AnonymousComment
	for _, c := range m.st.comments {
		if c.GroupID == groupID {
			out = append(out, c)
		}
	}
	return out, nil
}

// ── Mock LecturerMarkRepository ──

type mockMarkRepo struct{ st *mockStore }

func (m *mockMarkRepo) GetByStudent(_ context.Context, studentID string) (*model.LecturerMark, error) {
	if mk, ok := m.st.marks[studentID]; ok {
		cp := *mk
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMarkRepo) ListByGroup(_ context.Context, groupID string) ([]model.LecturerMark, error) {
	var out []model.LecturerMark
	for _, mk := range m.st.marks {
		if mk.GroupID == groupID {
			out = append(out, *mk)
		}
	}
	return out, nil
}

func (m *mockMarkRepo) Create(_ context.Context, mk *model.LecturerMark) error {
	if _, ok := m.st.marks[mk.StudentID]; ok {
		return gorm.ErrDuplicatedKey
	}
	if mk.MarkID == "" {
		mk.MarkID = m.st.nextID("mark")
	}
	cp := *mk
	m.st.marks[mk.StudentID] = &cp
	return nil
}

func (m *mockMarkRepo) Update(_ context.Context, mk *model.LecturerMark) error {
	cur, ok := m.st.marks[mk.StudentID]
	if !ok || cur.Version != mk.Version {
		return pkgerrors.ErrOptimisticLock
	}
	mk.Version++
	cp := *mk
	m.st.marks[mk.StudentID] = &cp
	return nil
}

// ── 测试数据辅助 ──

func strPtr(s string) *string { return &s }

// seedLecturer 创建教师
func (s *mockStore) seedLecturer(id, name string) *model.User {
	u := &model.User{UserID: id, Name: name, Email: id + "@example.edu", Role: model.RoleLecturer}
	s.users[id] = u
	return u
}

// seedCohort 创建课程、小组与学生（student-1 ... student-n）
func (s *mockStore) seedCohort(lecturerID string, n int) (*model.Subject, *model.Group, []string) {
	subject := &model.Subject{SubjectID: "subject-1", Name: "软件工程", LecturerID: lecturerID}
	s.subjects[subject.SubjectID] = subject
	group := &model.Group{GroupID: "group-1", SubjectID: subject.SubjectID, Name: "G1"}
	s.groups[group.GroupID] = group

	ids := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("student-%d", i)
		num := fmt.Sprintf("S%03d", i)
		s.users[id] = &model.User{
			UserID:        id,
			Name:          fmt.Sprintf("学生%d", i),
			StudentNumber: &num,
			Email:         id + "@example.edu",
			Role:          model.RoleStudent,
			GroupID:       strPtr(group.GroupID),
		}
		ids = append(ids, id)
	}
	return subject, group, ids
}

// ── Mock Mailer ──

type sentMail struct {
	to      []string
	subject string
	body    string
}

type mockMailer struct {
	sent []sentMail
	err  error
}

func (m *mockMailer) Send(_ context.Context, to []string, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}
