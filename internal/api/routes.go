package api

import (
	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"
	"github.com/dmoraru/llm-reliability-gate/internal/api/middleware"
	"github.com/dmoraru/llm-reliability-gate/internal/pipeline"
)

func RegisterRoutes(container *restful.Container, handler *Handler) {
	ws := new(restful.WebService)

	ws.
		Path("/api/v1").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	ws.
		Route(ws.GET("/health").
			To(handler.Health).
			Doc("Health check").
			Metadata(restfulspec.KeyOpenAPITags, []string{"health"}).
			Writes(HealthResponse{}).
			Returns(200, "OK", HealthResponse{}))

	ws.
		Route(ws.POST("/evaluate").
			To(handler.Evaluate).
			Doc("Run one reliability evaluation of the configured target model").
			Metadata(restfulspec.KeyOpenAPITags, []string{"evaluate"}).
			Reads(EvaluateRequest{}).
			Writes(pipeline.RunResult{}).
			Returns(200, "OK", pipeline.RunResult{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	ws.
		Route(ws.POST("/ingest").
			To(handler.Ingest).
			Doc("Ingest trusted documentation into the evidence index").
			Metadata(restfulspec.KeyOpenAPITags, []string{"ingest"}).
			Param(ws.QueryParameter("clear_first", "Drop the index before ingesting").DataType("boolean").Required(false)).
			Writes(IngestResponse{}).
			Returns(200, "OK", IngestResponse{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	container.Add(ws)
}
