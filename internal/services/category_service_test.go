package services

import (
	"testing"

	"ronin/internal/models"
	"ronin/internal/pagination"
	"ronin/internal/testutil"
)

func TestCreateCategory(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		cat, err := svc.CreateCategory(user.ID, "Groceries", models.CategoryGroupNeeds, "Food shopping", "cart", "#FF0000")
		testutil.AssertNoError(t, err)

		if cat.ID == "" {
			t.Fatal("expected category ID to be assigned")
		}
		if cat.Name != "Groceries" {
			t.Errorf("expected name Groceries, got %s", cat.Name)
		}
		if cat.Group != models.CategoryGroupNeeds {
			t.Errorf("expected group NEEDS, got %s", cat.Group)
		}
		if cat.Description != "Food shopping" {
			t.Errorf("expected description 'Food shopping', got %s", cat.Description)
		}
	})

	t.Run("duplicate_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateCategory(user.ID, "Food", models.CategoryGroupNeeds, "", "", "")
		testutil.AssertNoError(t, err)

		_, err = svc.CreateCategory(user.ID, "Food", models.CategoryGroupWants, "", "", "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("invalid_group", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateCategory(user.ID, "Misc", models.CategoryGroup("OTHER"), "", "", "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("empty_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateCategory(user.ID, "", models.CategoryGroupNeeds, "", "", "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("duplicate_name_different_users_allowed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)

		_, err := svc.CreateCategory(user1.ID, "Index Funds", models.CategoryGroupInvestment, "", "", "")
		testutil.AssertNoError(t, err)

		_, err = svc.CreateCategory(user2.ID, "Index Funds", models.CategoryGroupInvestment, "", "", "")
		testutil.AssertNoError(t, err)
	})
}

func TestGetUserCategories(t *testing.T) {
	t.Run("returns_user_categories_only", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)
		testutil.CreateTestCategory(t, db, user1.ID, models.CategoryGroupNeeds)
		testutil.CreateTestCategory(t, db, user1.ID, models.CategoryGroupWants)
		testutil.CreateTestCategory(t, db, user2.ID, models.CategoryGroupNeeds)

		result, err := svc.GetUserCategories(user1.ID, nil, pagination.PageRequest{Page: 1, PageSize: 10})
		testutil.AssertNoError(t, err)

		if result.TotalItems != 2 {
			t.Errorf("expected 2 categories, got %d", result.TotalItems)
		}
	})

	t.Run("filters_by_group", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestCategory(t, db, user.ID, models.CategoryGroupNeeds)
		testutil.CreateTestCategory(t, db, user.ID, models.CategoryGroupWants)
		testutil.CreateTestCategory(t, db, user.ID, models.CategoryGroupWants)

		group := models.CategoryGroupWants
		result, err := svc.GetUserCategories(user.ID, &group, pagination.PageRequest{})
		testutil.AssertNoError(t, err)

		if result.TotalItems != 2 {
			t.Errorf("expected 2 WANTS categories, got %d", result.TotalItems)
		}
		for _, c := range result.Data {
			if c.Group != models.CategoryGroupWants {
				t.Errorf("expected only WANTS, got %s", c.Group)
			}
		}
	})

	t.Run("pagination", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		for i := 0; i < 5; i++ {
			testutil.CreateTestCategory(t, db, user.ID, models.CategoryGroupNeeds)
		}

		result, err := svc.GetUserCategories(user.ID, nil, pagination.PageRequest{Page: 1, PageSize: 2})
		testutil.AssertNoError(t, err)

		if len(result.Data) != 2 {
			t.Errorf("expected 2 items on page, got %d", len(result.Data))
		}
		if result.TotalPages != 3 {
			t.Errorf("expected 3 total pages, got %d", result.TotalPages)
		}
	})
}

func TestGetCategoryByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		created := testutil.CreateTestCategory(t, db, user.ID, models.CategoryGroupNeeds)

		cat, err := svc.GetCategoryByID(user.ID, created.ID)
		testutil.AssertNoError(t, err)

		if cat.Name != created.Name {
			t.Errorf("expected name %s, got %s", created.Name, cat.Name)
		}
	})

	t.Run("wrong_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user1.ID, models.CategoryGroupNeeds)

		_, err := svc.GetCategoryByID(user2.ID, cat.ID)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}

func TestUpdateCategory(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryGroupNeeds)

		name := "Dining Out"
		group := models.CategoryGroupWants
		updated, err := svc.UpdateCategory(user.ID, cat.ID, UpdateCategoryInput{Name: &name, Group: &group})
		testutil.AssertNoError(t, err)

		if updated.Name != "Dining Out" {
			t.Errorf("expected name 'Dining Out', got %s", updated.Name)
		}
		if updated.Group != models.CategoryGroupWants {
			t.Errorf("expected group WANTS, got %s", updated.Group)
		}
	})

	t.Run("name_taken", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		first := testutil.CreateTestCategory(t, db, user.ID, models.CategoryGroupNeeds)
		second := testutil.CreateTestCategory(t, db, user.ID, models.CategoryGroupNeeds)

		_, err := svc.UpdateCategory(user.ID, second.ID, UpdateCategoryInput{Name: &first.Name})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("invalid_group", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryGroupNeeds)

		group := models.CategoryGroup("SAVINGS")
		_, err := svc.UpdateCategory(user.ID, cat.ID, UpdateCategoryInput{Group: &group})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		name := "x"
		_, err := svc.UpdateCategory(user.ID, "00000000-0000-7000-8000-000000000000", UpdateCategoryInput{Name: &name})
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}

func TestDeleteCategory(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryGroupNeeds)

		testutil.AssertNoError(t, svc.DeleteCategory(user.ID, cat.ID))

		_, err := svc.GetCategoryByID(user.ID, cat.ID)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("referenced_by_budget", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryGroupNeeds)
		budget := testutil.CreateTestBudget(t, db, user.ID)
		bc := testutil.CreateTestBudgetCategory(t, db, budget.ID, models.CategoryGroupNeeds, "100")
		db.Model(bc).Update("category_id", cat.ID)

		err := svc.DeleteCategory(user.ID, cat.ID)
		testutil.AssertAppError(t, err, "CATEGORY_IN_USE")

		if _, err := svc.GetCategoryByID(user.ID, cat.ID); err != nil {
			t.Errorf("expected category to survive, got %v", err)
		}
	})

	t.Run("allowed_after_budget_category_removed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryGroupNeeds)
		budget := testutil.CreateTestBudget(t, db, user.ID)
		bc := testutil.CreateTestBudgetCategory(t, db, budget.ID, models.CategoryGroupNeeds, "100")
		db.Model(bc).Update("category_id", cat.ID)
		db.Delete(bc)

		testutil.AssertNoError(t, svc.DeleteCategory(user.ID, cat.ID))
	})

	t.Run("wrong_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user1.ID, models.CategoryGroupNeeds)

		err := svc.DeleteCategory(user2.ID, cat.ID)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}
