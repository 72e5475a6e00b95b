package business

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"gorm.io/datatypes"

	"optima/recsync/pkg/entity"
	"optima/recsync/pkg/errorutil"
	"optima/recsync/pkg/model"
	"optima/recsync/pkg/pipeline"
)

type fakeStore struct {
	users     map[string]*entity.User
	idps      map[string]*entity.IDP
	skills    []entity.Skill
	resources []entity.Resource

	userErr   error
	updateErr error

	updatedIDP    string
	updatedRecs   []model.SuggestedResource
	updatedStatus string
	statusCalls   []string
}

func (f *fakeStore) GetUserByID(_ context.Context, userID string) (*entity.User, error) {
	if f.userErr != nil {
		return nil, f.userErr
	}
	return f.users[userID], nil
}

func (f *fakeStore) GetIDPByID(_ context.Context, idpID string) (*entity.IDP, error) {
	return f.idps[idpID], nil
}

func (f *fakeStore) ListSkills(_ context.Context) ([]entity.Skill, error) {
	return f.skills, nil
}

func (f *fakeStore) ListResources(_ context.Context) ([]entity.Resource, error) {
	return f.resources, nil
}

func (f *fakeStore) UpdateRecommendations(_ context.Context, idpID string, recs []model.SuggestedResource, status string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updatedIDP = idpID
	f.updatedRecs = recs
	f.updatedStatus = status
	return nil
}

func (f *fakeStore) UpdateIDPStatus(_ context.Context, idpID string, status string) error {
	f.statusCalls = append(f.statusCalls, idpID+":"+status)
	return nil
}

type fakeNotifier struct {
	published []*model.RecommendationNotification
	err       error
}

func (f *fakeNotifier) PublishRecommendationComplete(_ context.Context, _ string, n *model.RecommendationNotification) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, n)
	return nil
}

type nopLogger struct{}

func (nopLogger) Debugf(context.Context, string, ...interface{}) {}
func (nopLogger) Infof(context.Context, string, ...interface{})  {}
func (nopLogger) Warnf(context.Context, string, ...interface{})  {}
func (nopLogger) Errorf(context.Context, string, ...interface{}) {}

func fixtureStore() *fakeStore {
	return &fakeStore{
		users: map[string]*entity.User{
			"u1": {
				ID:     "u1",
				Name:   "Alice",
				Skills: datatypes.JSON(`[{"skillId":"s1","level":2}]`),
			},
		},
		idps: map[string]*entity.IDP{
			"i1": {
				ID:     "i1",
				UserID: "u1",
				Status: entity.IDPStatusPending,
				Goals:  datatypes.JSON(`[{"skill":"s1"}]`),
			},
		},
		skills: []entity.Skill{
			{ID: "s1", Name: "Go Programming", Category: "engineering"},
			{ID: "s2", Name: "Public Speaking", Category: "communication"},
		},
		resources: []entity.Resource{
			{ID: "r1", Title: "Go in Practice", Type: "course", SkillID: "s1"},
			{ID: "r2", Title: "Speak with Confidence", Type: "course", SkillID: "s2"},
		},
	}
}

func newTestService(store Store, notifier Notifier) *RecommendService {
	return NewRecommendService(store, notifier, pipeline.NewContentPipeline(pipeline.ContentConfig{}),
		"idp_recommendation_complete", nopLogger{})
}

func TestExecuteWritesTopRecommendations(t *testing.T) {
	store := fixtureStore()
	notifier := &fakeNotifier{}
	svc := newTestService(store, notifier)

	err := svc.Execute(context.Background(), &RecommendInput{JobID: "j1", UserID: "u1", IDPID: "i1"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if store.updatedIDP != "i1" {
		t.Fatalf("updated idp = %q, want i1", store.updatedIDP)
	}
	if store.updatedStatus != entity.IDPStatusActive {
		t.Errorf("status = %q, want %q", store.updatedStatus, entity.IDPStatusActive)
	}
	if len(store.updatedRecs) != 2 {
		t.Fatalf("recs count = %d, want 2", len(store.updatedRecs))
	}

	// 目标技能命中的资源排在最前
	if store.updatedRecs[0].Resource != "r1" {
		t.Errorf("top recommendation = %q, want r1", store.updatedRecs[0].Resource)
	}
	for i, rec := range store.updatedRecs {
		if rec.Reason == "" {
			t.Errorf("recs[%d] has empty reason", i)
		}
		if i > 0 && rec.Score > store.updatedRecs[i-1].Score {
			t.Errorf("recs not sorted: recs[%d].Score=%v > recs[%d].Score=%v",
				i, rec.Score, i-1, store.updatedRecs[i-1].Score)
		}
	}

	if len(notifier.published) != 1 {
		t.Fatalf("published %d notifications, want 1", len(notifier.published))
	}
	n := notifier.published[0]
	if n.IDPID != "i1" || n.UserID != "u1" || n.JobID != "j1" {
		t.Errorf("notification identity = %+v", n)
	}
	if n.Status != model.NotifyStatusActive || n.ResourceCount != 2 {
		t.Errorf("notification payload = %+v", n)
	}
}

func TestExecuteCapsRecommendations(t *testing.T) {
	store := fixtureStore()
	for i := 0; i < 15; i++ {
		store.resources = append(store.resources, entity.Resource{
			ID:      fmt.Sprintf("extra-%d", i),
			Title:   "Go Deep Dive",
			Type:    "video",
			SkillID: "s1",
		})
	}
	svc := newTestService(store, &fakeNotifier{})

	if err := svc.Execute(context.Background(), &RecommendInput{UserID: "u1", IDPID: "i1"}); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(store.updatedRecs) != maxRecommendations {
		t.Errorf("recs count = %d, want %d", len(store.updatedRecs), maxRecommendations)
	}
}

func TestExecuteUserMissing(t *testing.T) {
	store := fixtureStore()
	delete(store.users, "u1")
	svc := newTestService(store, &fakeNotifier{})

	err := svc.Execute(context.Background(), &RecommendInput{UserID: "u1", IDPID: "i1"})
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("Execute() error = %v, want ErrUserNotFound", err)
	}

	// 用户缺失但 IDP 存在：计划标记为 failed，结果不落库
	if len(store.statusCalls) != 1 || store.statusCalls[0] != "i1:"+entity.IDPStatusFailed {
		t.Errorf("status calls = %v, want [i1:failed]", store.statusCalls)
	}
	if store.updatedIDP != "" {
		t.Errorf("recommendations written for missing user")
	}
	if e := errorutil.Wrap(err); e.Retryable {
		t.Error("missing user classified retryable, want terminal")
	}
}

func TestExecuteIDPMissing(t *testing.T) {
	store := fixtureStore()
	delete(store.idps, "i1")
	svc := newTestService(store, &fakeNotifier{})

	err := svc.Execute(context.Background(), &RecommendInput{UserID: "u1", IDPID: "i1"})
	if !errors.Is(err, ErrIDPNotFound) {
		t.Fatalf("Execute() error = %v, want ErrIDPNotFound", err)
	}
	if len(store.statusCalls) != 0 {
		t.Errorf("status calls = %v, want none for missing idp", store.statusCalls)
	}
}

func TestExecuteStoreFailureIsRetryable(t *testing.T) {
	store := fixtureStore()
	store.userErr = errors.New("connection refused")
	svc := newTestService(store, &fakeNotifier{})

	err := svc.Execute(context.Background(), &RecommendInput{UserID: "u1", IDPID: "i1"})
	if err == nil {
		t.Fatal("Execute() error = nil, want store error")
	}
	if e := errorutil.Wrap(err); !e.Retryable {
		t.Error("store failure classified terminal, want retryable")
	}
}

func TestExecuteInvalidGoalsJSON(t *testing.T) {
	store := fixtureStore()
	store.idps["i1"].Goals = datatypes.JSON(`{broken`)
	svc := newTestService(store, &fakeNotifier{})

	err := svc.Execute(context.Background(), &RecommendInput{UserID: "u1", IDPID: "i1"})
	if err == nil {
		t.Fatal("Execute() error = nil, want parse error")
	}
	if e := errorutil.Wrap(err); e.Retryable {
		t.Error("corrupt goals classified retryable, want terminal")
	}
}

func TestExecuteNotifyFailureIsNonFatal(t *testing.T) {
	store := fixtureStore()
	notifier := &fakeNotifier{err: errors.New("redis down")}
	svc := newTestService(store, notifier)

	if err := svc.Execute(context.Background(), &RecommendInput{UserID: "u1", IDPID: "i1"}); err != nil {
		t.Fatalf("Execute() error = %v, want nil despite notify failure", err)
	}
	if store.updatedIDP != "i1" {
		t.Error("recommendations not written")
	}
}

func TestDeriveGaps(t *testing.T) {
	gapVal := 0.8
	cur := 3
	target := 4

	goals := []model.Goal{
		{Skill: "s1"},
		{Skill: "s2", Gap: &gapVal, CurrentLevel: &cur, TargetLevel: &target},
		{SkillID: "s3"},
		{},
	}
	gaps := deriveGaps(goals)

	if len(gaps) != 3 {
		t.Fatalf("gaps count = %d, want 3 (empty ref skipped)", len(gaps))
	}
	if gaps[0] != (pipeline.SkillGap{SkillID: "s1", Gap: defaultGap, CurrentLevel: defaultCurrentLevel, TargetLevel: defaultTargetLevel}) {
		t.Errorf("defaulted gap = %+v", gaps[0])
	}
	if gaps[1] != (pipeline.SkillGap{SkillID: "s2", Gap: 0.8, CurrentLevel: 3, TargetLevel: 4}) {
		t.Errorf("explicit gap = %+v", gaps[1])
	}
	if gaps[2].SkillID != "s3" {
		t.Errorf("skillId fallback = %+v", gaps[2])
	}
}

func TestFormatRecommendationsAppliesDefaultReason(t *testing.T) {
	ranked := []pipeline.ScoredResource{
		{Resource: pipeline.Resource{ID: "r1"}, Score: 0.9, Reason: "Directly addresses your goal: Go"},
		{Resource: pipeline.Resource{ID: "r2"}, Score: 0.1},
	}
	recs := formatRecommendations(ranked)

	if recs[0].Reason != "Directly addresses your goal: Go" {
		t.Errorf("recs[0].Reason = %q", recs[0].Reason)
	}
	if recs[1].Reason != defaultReason {
		t.Errorf("recs[1].Reason = %q, want default", recs[1].Reason)
	}
}
