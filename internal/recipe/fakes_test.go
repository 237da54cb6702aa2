package recipe

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/hitoshi/foodgram/internal/model"
	"github.com/hitoshi/foodgram/internal/repository"
)

// fakeStore はレシピ・食材・タグ・関連をメモリ上に保持するテスト用ストア。
// repository の各インターフェースを実装する。
type fakeStore struct {
	now time.Time

	recipes     map[int64]*model.Recipe
	recipeIngrs map[int64][]model.RecipeIngredient
	recipeTags  map[int64][]int64
	ingredients map[int64]model.Ingredient
	tags        map[int64]model.Tag
	users       map[int64]*model.User
	favorites   map[[2]int64]bool
	cart        map[[2]int64]bool
	subs        map[[2]int64]bool

	nextID    int64
	updateErr error
	listCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		now:         time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		recipes:     map[int64]*model.Recipe{},
		recipeIngrs: map[int64][]model.RecipeIngredient{},
		recipeTags:  map[int64][]int64{},
		ingredients: map[int64]model.Ingredient{
			1: {ID: 1, Name: "flour", MeasurementUnit: "g"},
			2: {ID: 2, Name: "sugar", MeasurementUnit: "g"},
			3: {ID: 3, Name: "eggs", MeasurementUnit: "pcs"},
		},
		tags: map[int64]model.Tag{
			1: {ID: 1, Name: "Breakfast", Slug: "breakfast"},
			2: {ID: 2, Name: "Lunch", Slug: "lunch"},
			3: {ID: 3, Name: "Dinner", Slug: "dinner"},
		},
		users: map[int64]*model.User{
			1: {ID: 1, Email: "alice@example.com", Username: "alice", FirstName: "Alice", LastName: "A"},
			2: {ID: 2, Email: "bob@example.com", Username: "bob", FirstName: "Bob", LastName: "B"},
		},
		favorites: map[[2]int64]bool{},
		cart:      map[[2]int64]bool{},
		subs:      map[[2]int64]bool{},
		nextID:    100,
	}
}

// seed はレシピを直接登録する。作成日時はIDの順に進む。
func (f *fakeStore) seed(id, authorID int64, tagIDs []int64, ingrs ...model.RecipeIngredient) {
	f.recipes[id] = &model.Recipe{
		ID:          id,
		AuthorID:    authorID,
		Name:        "recipe",
		Image:       "img.png",
		Text:        "text",
		CookingTime: 10,
		CreatedAt:   f.now.Add(time.Duration(id) * time.Minute),
	}
	f.recipeTags[id] = tagIDs
	for i := range ingrs {
		ingrs[i].RecipeID = id
	}
	f.recipeIngrs[id] = ingrs
}

func (f *fakeStore) withState(viewerID int64, r *model.Recipe) model.RecipeWithState {
	key := [2]int64{viewerID, r.ID}
	return model.RecipeWithState{
		Recipe:           *r,
		IsFavorited:      viewerID != model.AnonymousUserID && f.favorites[key],
		IsInShoppingCart: viewerID != model.AnonymousUserID && f.cart[key],
	}
}

func (f *fakeStore) matches(viewerID int64, r *model.Recipe, filter model.RecipeFilter) bool {
	if filter.AuthorID != nil && r.AuthorID != *filter.AuthorID {
		return false
	}
	if len(filter.TagSlugs) > 0 {
		found := false
		for _, tagID := range f.recipeTags[r.ID] {
			for _, slug := range filter.TagSlugs {
				if f.tags[tagID].Slug == slug {
					found = true
				}
			}
		}
		if !found {
			return false
		}
	}
	key := [2]int64{viewerID, r.ID}
	if filter.FavoritedOnly && viewerID != model.AnonymousUserID && !f.favorites[key] {
		return false
	}
	if filter.InCartOnly && viewerID != model.AnonymousUserID && !f.cart[key] {
		return false
	}
	return true
}

func (f *fakeStore) filtered(viewerID int64, filter model.RecipeFilter) []*model.Recipe {
	var out []*model.Recipe
	for _, r := range f.recipes {
		if f.matches(viewerID, r, filter) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

// --- RecipeRepository ---

func (f *fakeStore) FindByID(ctx context.Context, id int64) (*model.Recipe, error) {
	r, ok := f.recipes[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f *fakeStore) FindWithState(ctx context.Context, viewerID, id int64) (*model.RecipeWithState, error) {
	r, ok := f.recipes[id]
	if !ok {
		return nil, nil
	}
	rs := f.withState(viewerID, r)
	return &rs, nil
}

func (f *fakeStore) List(ctx context.Context, viewerID int64, filter model.RecipeFilter, limit, offset int) ([]model.RecipeWithState, error) {
	f.listCalls++
	all := f.filtered(viewerID, filter)
	if offset > len(all) {
		offset = len(all)
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	out := make([]model.RecipeWithState, 0, end-offset)
	for _, r := range all[offset:end] {
		out = append(out, f.withState(viewerID, r))
	}
	return out, nil
}

func (f *fakeStore) Count(ctx context.Context, viewerID int64, filter model.RecipeFilter) (int, error) {
	return len(f.filtered(viewerID, filter)), nil
}

func (f *fakeStore) IngredientsByRecipeIDs(ctx context.Context, ids []int64) (map[int64][]model.IngredientAmount, error) {
	out := map[int64][]model.IngredientAmount{}
	for _, id := range ids {
		for _, ri := range f.recipeIngrs[id] {
			ing := f.ingredients[ri.IngredientID]
			out[id] = append(out[id], model.IngredientAmount{
				ID: ing.ID, Name: ing.Name, MeasurementUnit: ing.MeasurementUnit, Amount: ri.Amount,
			})
		}
		sort.Slice(out[id], func(i, j int) bool { return out[id][i].Name < out[id][j].Name })
	}
	return out, nil
}

func (f *fakeStore) TagsByRecipeIDs(ctx context.Context, ids []int64) (map[int64][]model.Tag, error) {
	out := map[int64][]model.Tag{}
	for _, id := range ids {
		for _, tagID := range f.recipeTags[id] {
			out[id] = append(out[id], f.tags[tagID])
		}
		sort.Slice(out[id], func(i, j int) bool { return out[id][i].ID < out[id][j].ID })
	}
	return out, nil
}

func (f *fakeStore) ListShortByAuthor(ctx context.Context, authorID int64, limit int) ([]model.RecipeShort, error) {
	return nil, nil
}

func (f *fakeStore) CountByAuthors(ctx context.Context, authorIDs []int64) (map[int64]int, error) {
	return nil, nil
}

func (f *fakeStore) Create(ctx context.Context, r *model.Recipe, ingrs []model.RecipeIngredient, tagIDs []int64) error {
	f.nextID++
	r.ID = f.nextID
	r.CreatedAt = f.now.Add(time.Hour)
	r.UpdatedAt = r.CreatedAt
	cp := *r
	f.recipes[r.ID] = &cp
	f.recipeIngrs[r.ID] = append([]model.RecipeIngredient(nil), ingrs...)
	f.recipeTags[r.ID] = append([]int64(nil), tagIDs...)
	return nil
}

func (f *fakeStore) Update(ctx context.Context, r *model.Recipe, ingrs []model.RecipeIngredient, tagIDs []int64) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.recipes[r.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *r
	f.recipes[r.ID] = &cp
	f.recipeIngrs[r.ID] = append([]model.RecipeIngredient(nil), ingrs...)
	f.recipeTags[r.ID] = append([]int64(nil), tagIDs...)
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, id int64) error {
	if _, ok := f.recipes[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.recipes, id)
	delete(f.recipeIngrs, id)
	delete(f.recipeTags, id)
	return nil
}

// --- UserRepository ---

type fakeUsers struct{ store *fakeStore }

func (u fakeUsers) FindByID(ctx context.Context, id int64) (*model.User, error) {
	return u.store.users[id], nil
}

func (u fakeUsers) FindByIDs(ctx context.Context, ids []int64) (map[int64]*model.User, error) {
	out := map[int64]*model.User{}
	for _, id := range ids {
		if usr, ok := u.store.users[id]; ok {
			out[id] = usr
		}
	}
	return out, nil
}

func (u fakeUsers) List(ctx context.Context, limit, offset int) ([]*model.User, error) {
	return nil, nil
}
func (u fakeUsers) Count(ctx context.Context) (int, error) { return len(u.store.users), nil }
func (u fakeUsers) DeleteByID(ctx context.Context, id int64) error { return nil }

// --- SubscriptionRepository ---

type fakeSubs struct{ store *fakeStore }

func (s fakeSubs) Create(ctx context.Context, userID, authorID int64) error { return nil }
func (s fakeSubs) Delete(ctx context.Context, userID, authorID int64) (bool, error) {
	return false, nil
}
func (s fakeSubs) ListAuthorIDs(ctx context.Context, userID int64, limit, offset int) ([]int64, error) {
	return nil, nil
}
func (s fakeSubs) CountByUser(ctx context.Context, userID int64) (int, error) { return 0, nil }
func (s fakeSubs) SubscribedAuthorIDs(ctx context.Context, userID int64, authorIDs []int64) (map[int64]bool, error) {
	out := map[int64]bool{}
	for _, id := range authorIDs {
		if s.store.subs[[2]int64{userID, id}] {
			out[id] = true
		}
	}
	return out, nil
}

// --- IngredientRepository / TagRepository ---

type fakeIngredients struct{ store *fakeStore }

func (i fakeIngredients) FindByID(ctx context.Context, id int64) (*model.Ingredient, error) {
	return nil, nil
}
func (i fakeIngredients) SearchByNamePrefix(ctx context.Context, prefix string) ([]model.Ingredient, error) {
	return nil, nil
}
func (i fakeIngredients) ExistingIDs(ctx context.Context, ids []int64) (map[int64]bool, error) {
	out := map[int64]bool{}
	for _, id := range ids {
		if _, ok := i.store.ingredients[id]; ok {
			out[id] = true
		}
	}
	return out, nil
}
func (i fakeIngredients) BulkInsert(ctx context.Context, items []model.Ingredient) (int, error) {
	return 0, nil
}

type fakeTags struct{ store *fakeStore }

func (t fakeTags) List(ctx context.Context) ([]model.Tag, error) { return nil, nil }
func (t fakeTags) FindByID(ctx context.Context, id int64) (*model.Tag, error) {
	return nil, nil
}
func (t fakeTags) ExistingIDs(ctx context.Context, ids []int64) (map[int64]bool, error) {
	out := map[int64]bool{}
	for _, id := range ids {
		if _, ok := t.store.tags[id]; ok {
			out[id] = true
		}
	}
	return out, nil
}

// passthroughSanitizer はタグ風の文字列だけを取り除くテスト用サニタイザ。
type passthroughSanitizer struct{}

func (passthroughSanitizer) Sanitize(raw string) string {
	return strings.TrimSpace(strings.NewReplacer("<b>", "", "</b>", "").Replace(raw))
}

func newQueryService(store *fakeStore) *QueryService {
	return NewQueryService(store, fakeUsers{store}, fakeSubs{store})
}

type recordingObserver struct {
	ops []string
}

func (o *recordingObserver) ObserveRecipeMutation(op string) {
	o.ops = append(o.ops, op)
}

func newMutationService(store *fakeStore, observer MutationObserver) *MutationService {
	return NewMutationService(
		store,
		fakeIngredients{store},
		fakeTags{store},
		newQueryService(store),
		passthroughSanitizer{},
		Limits{CookingTimeMax: 600, AmountMax: 10000},
		observer,
		nil,
	)
}
