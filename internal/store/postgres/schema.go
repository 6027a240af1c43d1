package postgres

// Schema is applied at startup. Every statement is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
    id            text PRIMARY KEY, -- Strava athlete ID
    name          text NOT NULL DEFAULT '',
    image         text NOT NULL DEFAULT '',
    access_token  text NOT NULL DEFAULT '',
    refresh_token text NOT NULL DEFAULT '',
    expires_at    bigint NOT NULL DEFAULT 0, -- epoch seconds
    created_at    timestamptz NOT NULL DEFAULT now(),
    updated_at    timestamptz NOT NULL DEFAULT now()
);

-- user_id has no foreign key: friends are tracked by athlete ID and may never
-- have signed in.
CREATE TABLE IF NOT EXISTS activities (
    id          text PRIMARY KEY, -- Strava activity ID, globally unique
    user_id     text NOT NULL,
    name        text NOT NULL DEFAULT '',
    type        text NOT NULL DEFAULT '',
    distance    double precision NOT NULL DEFAULT 0, -- meters
    moving_time integer NOT NULL DEFAULT 0, -- seconds
    start_date  timestamptz NOT NULL
);

CREATE INDEX IF NOT EXISTS activities_user_start_idx ON activities (user_id, start_date DESC);

CREATE TABLE IF NOT EXISTS friends (
    id           uuid PRIMARY KEY,
    user_id      text NOT NULL REFERENCES users (id),
    friend_id    text NOT NULL,
    friend_name  text NOT NULL,
    friend_image text NOT NULL DEFAULT '',
    created_at   timestamptz NOT NULL DEFAULT now(),
    CONSTRAINT friends_pair_uq UNIQUE (user_id, friend_id)
);

CREATE TABLE IF NOT EXISTS sessions (
    id         uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id    text NOT NULL REFERENCES users (id),
    created_at timestamptz NOT NULL DEFAULT now(),
    expires_at timestamptz NOT NULL,
    revoked_at timestamptz,
    ip         text,
    user_agent text
);

CREATE INDEX IF NOT EXISTS sessions_user_idx ON sessions (user_id);
`
