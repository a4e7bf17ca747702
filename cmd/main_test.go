package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const salesCSV = "pizza_id,order_id,pizza_name_id,quantity,order_date,order_time,unit_price,total_price,pizza_size,pizza_category,pizza_ingredients,pizza_name\n" +
	`1,1,hawaiian_m,1,1/1/2015,11:38:36,13.25,13.25,M,Classic,"Sliced Ham, Pineapple",The Hawaiian Pizza` + "\n" +
	`2,2,five_cheese_l,2,1/1/2015,11:57:40,18.5,37,L,Veggie,"Mozzarella Cheese",The Five Cheese Pizza` + "\n"

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("APP_ENV", "test")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", filepath.Join(dir, "pizzeria.sqlite"))
	t.Setenv("DATABASE_URL", "")
	t.Setenv("TIME_ZONE", "UTC")
	t.Setenv("LOG_FILE", "")
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestImportCommand(t *testing.T) {
	dir := setupEnv(t)
	file := filepath.Join(dir, "sales.csv")
	require.NoError(t, os.WriteFile(file, []byte(salesCSV), 0o600))

	out, err := run(t, "import", "--file", file, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Dry run")
	assert.Contains(t, out, "Import finished: Pizzas created: 2, Variants created: 2, Orders created: 2, Items created: 2. Rows skipped: 0.")

	out, err = run(t, "import", "--file", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Orders created: 2, Items created: 2.")

	out, err = run(t, "import", "--file", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Import finished: Pizzas created: 0, Variants created: 0, Orders created: 0, Items created: 0. Rows skipped: 0.")
}

func TestImportCommandMissingFile(t *testing.T) {
	dir := setupEnv(t)
	t.Setenv("CSV_PATH", filepath.Join(dir, "nope.csv"))

	_, err := run(t, "import")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CSV file not found")
}

func TestStaffAndClientCreate(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "staff", "create", "--email", "Chef@Example.com", "--password", "s3cret!", "--role", "manager")
	require.NoError(t, err)
	assert.Contains(t, out, "Created manager user chef@example.com")

	_, err = run(t, "staff", "create", "--email", "chef@example.com", "--password", "other")
	assert.Error(t, err)

	out, err = run(t, "client", "create", "--email", "chef@example.com", "--name", "pos")
	require.NoError(t, err)
	assert.Contains(t, out, "Client Secret:")
	assert.Contains(t, out, "Role:          manager")

	_, err = run(t, "client", "create", "--email", "ghost@example.com")
	assert.Error(t, err)
}

func TestStaffCreateRejectsUnknownRole(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "staff", "create", "--email", "a@example.com", "--password", "pw", "--role", "owner")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "role"))
}
