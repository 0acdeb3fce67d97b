package config

type Config struct {
	// postgres://...: PostgreSQL через pgx, иначе путь к файлу SQLite (":memory:" для тестов)
	DBDsn string
}
