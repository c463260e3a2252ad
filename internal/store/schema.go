package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS quotes (
    id                   INTEGER PRIMARY KEY AUTOINCREMENT,
    currency             TEXT NOT NULL,
    price                REAL NOT NULL,
    source               TEXT NOT NULL,
    fetched_at_ns        INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_quotes_currency_time ON quotes(currency, fetched_at_ns);
`
