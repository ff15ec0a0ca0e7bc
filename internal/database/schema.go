package database

// Both schemas describe the same tables. Timestamps are always written by
// the application in UTC, so neither relies on server-side NOW() defaults.

const mysqlSchema = `
CREATE TABLE IF NOT EXISTS users (
    id               VARCHAR(36)  NOT NULL PRIMARY KEY,
    email            VARCHAR(255) NULL,
    phone            VARCHAR(20)  NULL,
    name             VARCHAR(120) NOT NULL DEFAULT '',
    avatar           VARCHAR(500) NOT NULL DEFAULT '',
    password_hash    VARCHAR(255) NULL,
    role             VARCHAR(16)  NOT NULL DEFAULT 'USER',
    status           VARCHAR(16)  NOT NULL DEFAULT 'active',
    is_verified      BOOLEAN      NOT NULL DEFAULT FALSE,
    subscription_id  VARCHAR(36)  NULL,
    subscription_end DATETIME     NULL,
    created_at       DATETIME     NOT NULL,
    updated_at       DATETIME     NOT NULL,
    UNIQUE KEY uq_users_email (email),
    UNIQUE KEY uq_users_phone (phone),
    KEY idx_users_role (role)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

CREATE TABLE IF NOT EXISTS user_profiles (
    id          VARCHAR(36)  NOT NULL PRIMARY KEY,
    user_id     VARCHAR(36)  NOT NULL,
    name        VARCHAR(120) NOT NULL,
    avatar      VARCHAR(500) NOT NULL DEFAULT '',
    is_kids     BOOLEAN      NOT NULL DEFAULT FALSE,
    preferences TEXT         NOT NULL,
    created_at  DATETIME     NOT NULL,
    updated_at  DATETIME     NOT NULL,
    KEY idx_profiles_user (user_id, created_at),
    CONSTRAINT fk_profiles_user FOREIGN KEY (user_id) REFERENCES users(id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

CREATE TABLE IF NOT EXISTS videos (
    id           VARCHAR(36)  NOT NULL PRIMARY KEY,
    title        VARCHAR(255) NOT NULL,
    description  TEXT         NOT NULL,
    thumbnail    VARCHAR(500) NOT NULL,
    video_url    VARCHAR(500) NOT NULL,
    duration     INT          NOT NULL DEFAULT 0,
    category     VARCHAR(20)  NOT NULL,
    language     VARCHAR(20)  NOT NULL,
    release_year INT          NULL,
    age_rating   VARCHAR(8)   NOT NULL DEFAULT 'U',
    is_premium   BOOLEAN      NOT NULL DEFAULT FALSE,
    is_public    BOOLEAN      NOT NULL DEFAULT FALSE,
    approved_at  DATETIME     NULL,
    view_count   BIGINT       NOT NULL DEFAULT 0,
    tags         TEXT         NOT NULL,
    created_by   VARCHAR(36)  NOT NULL,
    created_at   DATETIME     NOT NULL,
    updated_at   DATETIME     NOT NULL,
    KEY idx_videos_feed (is_public, approved_at, created_at),
    KEY idx_videos_creator (created_by),
    CONSTRAINT fk_videos_creator FOREIGN KEY (created_by) REFERENCES users(id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

CREATE TABLE IF NOT EXISTS subscriptions (
    id         VARCHAR(36) NOT NULL PRIMARY KEY,
    user_id    VARCHAR(36) NOT NULL,
    plan       VARCHAR(16) NOT NULL,
    price      BIGINT      NOT NULL,
    currency   VARCHAR(3)  NOT NULL DEFAULT 'INR',
    start_date DATETIME    NOT NULL,
    end_date   DATETIME    NOT NULL,
    is_active  BOOLEAN     NOT NULL DEFAULT TRUE,
    payment_id VARCHAR(64) NULL,
    created_at DATETIME    NOT NULL,
    KEY idx_subscriptions_user (user_id, created_at),
    CONSTRAINT fk_subscriptions_user FOREIGN KEY (user_id) REFERENCES users(id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

CREATE TABLE IF NOT EXISTS payments (
    id             VARCHAR(64) NOT NULL PRIMARY KEY,
    user_id        VARCHAR(36) NOT NULL,
    plan           VARCHAR(16) NOT NULL DEFAULT '',
    amount         BIGINT      NOT NULL,
    currency       VARCHAR(3)  NOT NULL DEFAULT 'INR',
    method         VARCHAR(16) NOT NULL,
    status         VARCHAR(16) NOT NULL,
    transaction_id VARCHAR(64) NULL,
    details        TEXT        NOT NULL,
    created_at     DATETIME    NOT NULL,
    KEY idx_payments_user (user_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

CREATE TABLE IF NOT EXISTS watch_history (
    id         VARCHAR(36) NOT NULL PRIMARY KEY,
    user_id    VARCHAR(36) NOT NULL,
    video_id   VARCHAR(36) NOT NULL,
    watch_time INT         NOT NULL DEFAULT 0,
    watched_at DATETIME    NOT NULL,
    KEY idx_history_user (user_id, watched_at),
    KEY idx_history_video (video_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

CREATE TABLE IF NOT EXISTS watchlist_items (
    id       VARCHAR(36) NOT NULL PRIMARY KEY,
    user_id  VARCHAR(36) NOT NULL,
    video_id VARCHAR(36) NOT NULL,
    added_at DATETIME    NOT NULL,
    UNIQUE KEY uq_watchlist_pair (user_id, video_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

CREATE TABLE IF NOT EXISTS reviews (
    id         VARCHAR(36) NOT NULL PRIMARY KEY,
    user_id    VARCHAR(36) NOT NULL,
    video_id   VARCHAR(36) NOT NULL,
    rating     INT         NOT NULL,
    comment    TEXT        NOT NULL,
    created_at DATETIME    NOT NULL,
    UNIQUE KEY uq_reviews_pair (user_id, video_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

CREATE TABLE IF NOT EXISTS refresh_tokens (
    id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
    user_id    VARCHAR(36)     NOT NULL,
    token_hash CHAR(64)        NOT NULL,
    expires_at DATETIME        NOT NULL,
    revoked_at DATETIME        NULL,
    created_at DATETIME        NOT NULL,
    UNIQUE KEY uq_refresh_hash (token_hash),
    KEY idx_refresh_user (user_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
    id               VARCHAR(36) PRIMARY KEY,
    email            VARCHAR(255) UNIQUE,
    phone            VARCHAR(20) UNIQUE,
    name             VARCHAR(120) NOT NULL DEFAULT '',
    avatar           VARCHAR(500) NOT NULL DEFAULT '',
    password_hash    VARCHAR(255),
    role             VARCHAR(16) NOT NULL DEFAULT 'USER',
    status           VARCHAR(16) NOT NULL DEFAULT 'active',
    is_verified      BOOLEAN NOT NULL DEFAULT 0,
    subscription_id  VARCHAR(36),
    subscription_end DATETIME,
    created_at       DATETIME NOT NULL,
    updated_at       DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS user_profiles (
    id          VARCHAR(36) PRIMARY KEY,
    user_id     VARCHAR(36) NOT NULL REFERENCES users(id),
    name        VARCHAR(120) NOT NULL,
    avatar      VARCHAR(500) NOT NULL DEFAULT '',
    is_kids     BOOLEAN NOT NULL DEFAULT 0,
    preferences TEXT NOT NULL DEFAULT '{}',
    created_at  DATETIME NOT NULL,
    updated_at  DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_profiles_user ON user_profiles(user_id, created_at);

CREATE TABLE IF NOT EXISTS videos (
    id           VARCHAR(36) PRIMARY KEY,
    title        VARCHAR(255) NOT NULL,
    description  TEXT NOT NULL,
    thumbnail    VARCHAR(500) NOT NULL,
    video_url    VARCHAR(500) NOT NULL,
    duration     INTEGER NOT NULL DEFAULT 0,
    category     VARCHAR(20) NOT NULL,
    language     VARCHAR(20) NOT NULL,
    release_year INTEGER,
    age_rating   VARCHAR(8) NOT NULL DEFAULT 'U',
    is_premium   BOOLEAN NOT NULL DEFAULT 0,
    is_public    BOOLEAN NOT NULL DEFAULT 0,
    approved_at  DATETIME,
    view_count   INTEGER NOT NULL DEFAULT 0,
    tags         TEXT NOT NULL DEFAULT '[]',
    created_by   VARCHAR(36) NOT NULL REFERENCES users(id),
    created_at   DATETIME NOT NULL,
    updated_at   DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_videos_feed ON videos(is_public, approved_at, created_at);
CREATE INDEX IF NOT EXISTS idx_videos_creator ON videos(created_by);

CREATE TABLE IF NOT EXISTS subscriptions (
    id         VARCHAR(36) PRIMARY KEY,
    user_id    VARCHAR(36) NOT NULL REFERENCES users(id),
    plan       VARCHAR(16) NOT NULL,
    price      INTEGER NOT NULL,
    currency   VARCHAR(3) NOT NULL DEFAULT 'INR',
    start_date DATETIME NOT NULL,
    end_date   DATETIME NOT NULL,
    is_active  BOOLEAN NOT NULL DEFAULT 1,
    payment_id VARCHAR(64),
    created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_subscriptions_user ON subscriptions(user_id, created_at);

CREATE TABLE IF NOT EXISTS payments (
    id             VARCHAR(64) PRIMARY KEY,
    user_id        VARCHAR(36) NOT NULL,
    plan           VARCHAR(16) NOT NULL DEFAULT '',
    amount         INTEGER NOT NULL,
    currency       VARCHAR(3) NOT NULL DEFAULT 'INR',
    method         VARCHAR(16) NOT NULL,
    status         VARCHAR(16) NOT NULL,
    transaction_id VARCHAR(64),
    details        TEXT NOT NULL DEFAULT '{}',
    created_at     DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_payments_user ON payments(user_id);

CREATE TABLE IF NOT EXISTS watch_history (
    id         VARCHAR(36) PRIMARY KEY,
    user_id    VARCHAR(36) NOT NULL,
    video_id   VARCHAR(36) NOT NULL,
    watch_time INTEGER NOT NULL DEFAULT 0,
    watched_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_history_user ON watch_history(user_id, watched_at);
CREATE INDEX IF NOT EXISTS idx_history_video ON watch_history(video_id);

CREATE TABLE IF NOT EXISTS watchlist_items (
    id       VARCHAR(36) PRIMARY KEY,
    user_id  VARCHAR(36) NOT NULL,
    video_id VARCHAR(36) NOT NULL,
    added_at DATETIME NOT NULL,
    UNIQUE (user_id, video_id)
);

CREATE TABLE IF NOT EXISTS reviews (
    id         VARCHAR(36) PRIMARY KEY,
    user_id    VARCHAR(36) NOT NULL,
    video_id   VARCHAR(36) NOT NULL,
    rating     INTEGER NOT NULL,
    comment    TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL,
    UNIQUE (user_id, video_id)
);

CREATE TABLE IF NOT EXISTS refresh_tokens (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id    VARCHAR(36) NOT NULL,
    token_hash CHAR(64) NOT NULL UNIQUE,
    expires_at DATETIME NOT NULL,
    revoked_at DATETIME,
    created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_refresh_user ON refresh_tokens(user_id);
`
