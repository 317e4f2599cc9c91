package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/car-service/internal/models"
	"github.com/Dan9191/car-service/internal/repository"
)

var carCols = []string{"id", "user_id", "title", "description", "tags", "images", "created_at", "updated_at"}

const ownerScoped = `WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2`

func TestCreateCar(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	q := `(?s)INSERT\s+INTO\s+cars\s*\(id,\s*user_id,\s*title,\s*description,\s*tags,\s*images,\s*created_at,\s*updated_at\)`
	mock.ExpectExec(q).
		WithArgs("c-1", "u-1", "Tesla", "EV", `{"electric","sedan"}`, "{}", now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).
		WithArgs("c-2", "gone", "Tesla", "EV", "{}", "{}", now, now).
		WillReturnError(&pq.Error{Code: "23503"})

	require.NoError(t, repo.CreateCar(context.Background(), &models.Car{
		ID: "c-1", UserID: "u-1", Title: "Tesla", Description: "EV",
		Tags: []string{"electric", "sedan"}, CreatedAt: now, UpdatedAt: now,
	}))

	err := repo.CreateCar(context.Background(), &models.Car{
		ID: "c-2", UserID: "gone", Title: "Tesla", Description: "EV", CreatedAt: now, UpdatedAt: now,
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListCars(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("without search", func(t *testing.T) {
		mock.ExpectQuery(`(?s)FROM\s+cars\s+WHERE\s+user_id\s*=\s*\$1\s+ORDER\s+BY\s+created_at\s+DESC$`).
			WithArgs("u-1").
			WillReturnRows(sqlmock.NewRows(carCols).
				AddRow("c-2", "u-1", "Jeep", "4x4", "{}", "{b.jpg}", now.Add(time.Hour), now.Add(time.Hour)).
				AddRow("c-1", "u-1", "Tesla", "EV", "{electric,sedan}", "{a.png}", now, now))

		cars, err := repo.ListCars(context.Background(), "u-1", "")
		require.NoError(t, err)
		require.Len(t, cars, 2)
		assert.Equal(t, "c-2", cars[0].ID)
		assert.Equal(t, []string{}, cars[0].Tags)
		assert.Equal(t, []string{"electric", "sedan"}, cars[1].Tags)
		assert.Equal(t, []string{"a.png"}, cars[1].Images)
	})

	t.Run("search matches title, description and tags", func(t *testing.T) {
		q := `(?s)WHERE\s+user_id\s*=\s*\$1\s+AND\s+\(LOWER\(title\)\s+LIKE\s+\$2.*LOWER\(description\)\s+LIKE\s+\$2.*unnest\(tags\).*LOWER\(tag\)\s+LIKE\s+\$2.*ORDER\s+BY\s+created_at\s+DESC`
		mock.ExpectQuery(q).WithArgs("u-1", `%100\%%`).WillReturnRows(sqlmock.NewRows(carCols))

		cars, err := repo.ListCars(context.Background(), "u-1", "100%")
		require.NoError(t, err)
		assert.NotNil(t, cars)
		assert.Empty(t, cars)
	})
}

func TestFindCar_OwnerScoped(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)FROM\s+cars\s+`+ownerScoped).WithArgs("c-1", "intruder").
		WillReturnRows(sqlmock.NewRows(carCols))

	_, err := repo.FindCar(context.Background(), "intruder", "c-1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUpdateCar_NilFieldsAreSentAsNull(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	title := "Tesla LR"

	q := `(?s)UPDATE\s+cars\s+SET\s+title\s*=\s*COALESCE\(\$3,\s*title\),\s*description\s*=\s*COALESCE\(\$4,\s*description\),\s*tags\s*=\s*COALESCE\(\$5,\s*tags\),\s*images\s*=\s*COALESCE\(\$6,\s*images\),\s*updated_at\s*=\s*\$7\s+` + ownerScoped + `\s+RETURNING`

	t.Run("omitted fields", func(t *testing.T) {
		mock.ExpectQuery(q).WithArgs("c-1", "u-1", "Tesla LR", nil, nil, nil, now).
			WillReturnRows(sqlmock.NewRows(carCols).AddRow("c-1", "u-1", "Tesla LR", "EV", "{electric}", "{a.png}", now, now))

		car, err := repo.UpdateCar(context.Background(), "u-1", "c-1", models.CarUpdate{Title: &title, UpdatedAt: now})
		require.NoError(t, err)
		assert.Equal(t, "Tesla LR", car.Title)
		assert.Equal(t, []string{"a.png"}, car.Images)
	})

	t.Run("empty tags clear, new images replace", func(t *testing.T) {
		mock.ExpectQuery(q).WithArgs("c-1", "u-1", nil, nil, "{}", `{"n1.jpg","n2.png"}`, now).
			WillReturnRows(sqlmock.NewRows(carCols).AddRow("c-1", "u-1", "Tesla LR", "EV", "{}", "{n1.jpg,n2.png}", now, now))

		car, err := repo.UpdateCar(context.Background(), "u-1", "c-1", models.CarUpdate{
			Tags: []string{}, Images: []string{"n1.jpg", "n2.png"}, UpdatedAt: now,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{}, car.Tags)
		assert.Equal(t, []string{"n1.jpg", "n2.png"}, car.Images)
	})

	t.Run("not owned", func(t *testing.T) {
		mock.ExpectQuery(q).WithArgs("c-1", "intruder", "Tesla LR", nil, nil, nil, now).
			WillReturnRows(sqlmock.NewRows(carCols))

		_, err := repo.UpdateCar(context.Background(), "intruder", "c-1", models.CarUpdate{Title: &title, UpdatedAt: now})
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestDeleteCar_ReturnsRow(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	q := `(?s)^DELETE\s+FROM\s+cars\s+` + ownerScoped + `\s+RETURNING\s+id,\s*user_id`
	mock.ExpectQuery(q).WithArgs("c-1", "u-1").
		WillReturnRows(sqlmock.NewRows(carCols).AddRow("c-1", "u-1", "Tesla", "EV", "{}", "{a.png,b.jpg}", now, now))
	mock.ExpectQuery(q).WithArgs("not-a-uuid", "u-1").WillReturnError(&pq.Error{Code: "22P02"})

	car, err := repo.DeleteCar(context.Background(), "u-1", "c-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.png", "b.jpg"}, car.Images)

	_, err = repo.DeleteCar(context.Background(), "u-1", "not-a-uuid")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
