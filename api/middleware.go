package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"
)

type CtxKey string

const (
	CtxKeyLimit  CtxKey = "limit"
	CtxKeyOffset CtxKey = "offset"
)

const DefaultPageLimit = 50

func Paginate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limitStr := r.URL.Query().Get("limit")
		offsetStr := r.URL.Query().Get("offset")

		var err error
		limit := DefaultPageLimit
		if limitStr != "" {
			limit, err = strconv.Atoi(limitStr)
			if err != nil || limit < 1 {
				limit = DefaultPageLimit
			}
		}

		offset := 0
		if offsetStr != "" {
			offset, err = strconv.Atoi(offsetStr)
			if err != nil || offset < 0 {
				offset = 0
			}
		}

		log.Debug().Int("limit", limit).Int("offset", offset).Send()
		ctx := context.WithValue(r.Context(), CtxKeyLimit, limit)
		ctx = context.WithValue(ctx, CtxKeyOffset, offset)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func getPagination(r *http.Request) (limit, offset int) {
	limit, ok := r.Context().Value(CtxKeyLimit).(int)
	if !ok {
		limit = DefaultPageLimit
	}
	offset, ok = r.Context().Value(CtxKeyOffset).(int)
	if !ok {
		offset = 0
	}
	return limit, offset
}
