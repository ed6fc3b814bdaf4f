package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// pathID parses the {id} path variable
func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}
