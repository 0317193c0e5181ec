package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sharetube/jukebox/internal/app"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
}

var (
	port = configVar[int]{
		envKey:       "SERVER_PORT",
		flagKey:      "port",
		defaultValue: 80,
	}
	host = configVar[string]{
		envKey:       "SERVER_HOST",
		flagKey:      "host",
		defaultValue: "0.0.0.0",
	}
	logLevel = configVar[string]{
		envKey:       "SERVER_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
	}
	playlistLimit = configVar[int]{
		envKey:       "SERVER_PLAYLIST_LIMIT",
		flagKey:      "playlist-limit",
		defaultValue: 0,
	}
	upcomingCount = configVar[int]{
		envKey:       "SERVER_UPCOMING_COUNT",
		flagKey:      "upcoming-count",
		defaultValue: 5,
	}
	moderators = configVar[[]string]{
		envKey:       "SERVER_MODERATORS",
		flagKey:      "moderators",
		defaultValue: nil,
	}
	roomExp = configVar[time.Duration]{
		envKey:       "SERVER_ROOM_EXP",
		flagKey:      "room-exp",
		defaultValue: 24 * 14 * time.Hour,
	}
	connTTL = configVar[time.Duration]{
		envKey:       "SERVER_CONN_TTL",
		flagKey:      "conn-ttl",
		defaultValue: time.Minute,
	}
	youtubeAPIKey = configVar[string]{
		envKey:       "YOUTUBE_API_KEY",
		flagKey:      "youtube-api-key",
		defaultValue: "",
	}
	youtubeLookupTimeout = configVar[time.Duration]{
		envKey:       "YOUTUBE_LOOKUP_TIMEOUT",
		flagKey:      "youtube-lookup-timeout",
		defaultValue: 10 * time.Second,
	}
	redisPort = configVar[int]{
		envKey:       "REDIS_PORT",
		flagKey:      "redis-port",
		defaultValue: 6379,
	}
	redisHost = configVar[string]{
		envKey:       "REDIS_HOST",
		flagKey:      "redis-host",
		defaultValue: "localhost",
	}
	redisPassword = configVar[string]{
		envKey:       "REDIS_PASSWORD",
		flagKey:      "redis-password",
		defaultValue: "",
	}
)

func loadAppConfig() *app.AppConfig {
	pflag.Int(port.flagKey, port.defaultValue, "Server port")
	pflag.String(host.flagKey, host.defaultValue, "Server host")
	pflag.String(logLevel.flagKey, logLevel.defaultValue, "Logging level")
	pflag.Int(playlistLimit.flagKey, playlistLimit.defaultValue, "Maximum number of songs in a playlist, 0 for no limit")
	pflag.Int(upcomingCount.flagKey, upcomingCount.defaultValue, "Number of songs listed by the upcoming command")
	pflag.StringSlice(moderators.flagKey, moderators.defaultValue, "Usernames that moderate every room")
	pflag.Duration(roomExp.flagKey, roomExp.defaultValue, "Time an idle room is kept")
	pflag.Duration(connTTL.flagKey, connTTL.defaultValue, "Time a connection stays live without a message")
	pflag.String(youtubeAPIKey.flagKey, youtubeAPIKey.defaultValue, "YouTube Data API key")
	pflag.Duration(youtubeLookupTimeout.flagKey, youtubeLookupTimeout.defaultValue, "Timeout of a single video lookup")
	pflag.Int(redisPort.flagKey, redisPort.defaultValue, "Redis port")
	pflag.String(redisHost.flagKey, redisHost.defaultValue, "Redis host")
	pflag.String(redisPassword.flagKey, redisPassword.defaultValue, "Redis password")
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	viper.BindEnv(port.flagKey, port.envKey)
	viper.BindEnv(host.flagKey, host.envKey)
	viper.BindEnv(logLevel.flagKey, logLevel.envKey)
	viper.BindEnv(playlistLimit.flagKey, playlistLimit.envKey)
	viper.BindEnv(upcomingCount.flagKey, upcomingCount.envKey)
	viper.BindEnv(moderators.flagKey, moderators.envKey)
	viper.BindEnv(roomExp.flagKey, roomExp.envKey)
	viper.BindEnv(connTTL.flagKey, connTTL.envKey)
	viper.BindEnv(youtubeAPIKey.flagKey, youtubeAPIKey.envKey)
	viper.BindEnv(youtubeLookupTimeout.flagKey, youtubeLookupTimeout.envKey)
	viper.BindEnv(redisPort.flagKey, redisPort.envKey)
	viper.BindEnv(redisHost.flagKey, redisHost.envKey)
	viper.BindEnv(redisPassword.flagKey, redisPassword.envKey)

	viper.SetDefault(port.flagKey, port.defaultValue)
	viper.SetDefault(host.flagKey, host.defaultValue)
	viper.SetDefault(logLevel.flagKey, logLevel.defaultValue)
	viper.SetDefault(playlistLimit.flagKey, playlistLimit.defaultValue)
	viper.SetDefault(upcomingCount.flagKey, upcomingCount.defaultValue)
	viper.SetDefault(moderators.flagKey, moderators.defaultValue)
	viper.SetDefault(roomExp.flagKey, roomExp.defaultValue)
	viper.SetDefault(connTTL.flagKey, connTTL.defaultValue)
	viper.SetDefault(youtubeAPIKey.flagKey, youtubeAPIKey.defaultValue)
	viper.SetDefault(youtubeLookupTimeout.flagKey, youtubeLookupTimeout.defaultValue)
	viper.SetDefault(redisPort.flagKey, redisPort.defaultValue)
	viper.SetDefault(redisHost.flagKey, redisHost.defaultValue)
	viper.SetDefault(redisPassword.flagKey, redisPassword.defaultValue)

	config := &app.AppConfig{
		Host:                 viper.GetString(host.flagKey),
		Port:                 viper.GetInt(port.flagKey),
		LogLevel:             viper.GetString(logLevel.flagKey),
		PlaylistLimit:        viper.GetInt(playlistLimit.flagKey),
		UpcomingCount:        viper.GetInt(upcomingCount.flagKey),
		Moderators:           splitList(viper.GetStringSlice(moderators.flagKey)),
		RoomExp:              viper.GetDuration(roomExp.flagKey),
		ConnTTL:              viper.GetDuration(connTTL.flagKey),
		YouTubeAPIKey:        viper.GetString(youtubeAPIKey.flagKey),
		YouTubeLookupTimeout: viper.GetDuration(youtubeLookupTimeout.flagKey),
		RedisPort:            viper.GetInt(redisPort.flagKey),
		RedisHost:            viper.GetString(redisHost.flagKey),
		RedisPassword:        viper.GetString(redisPassword.flagKey),
	}

	return config
}

// splitList accepts both comma and space separated values, env vars only split on
// spaces.
func splitList(values []string) []string {
	var result []string
	for _, value := range values {
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				result = append(result, item)
			}
		}
	}

	return result
}

func main() {
	ctx := context.Background()

	appConfig := loadAppConfig()

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting app with config: %s\n", jsonConfig)

	if err := app.Run(ctx, appConfig); err != nil {
		log.Fatal(err)
	}
}
