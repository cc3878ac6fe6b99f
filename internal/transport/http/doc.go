// Package http implements the HTTP handlers of the score analyzer API.
//
// Handlers stay thin: they parse and validate the request, call the
// score service and render the result. Every failure goes through the
// shared ErrorHandler and is answered as RFC 7807 problem details:
//
//	{
//	    "type": "/errors/validation",
//	    "title": "Bad Request",
//	    "status": 400,
//	    "detail": "invalid assignment config",
//	    "instance": "/api/v1/assignment-configs",
//	    "errors": ["line 3: percentage must be between 0 and 100"]
//	}
//
// Routes, relative to /api/v1:
//
//	POST   /rosters                          import a workbook (multipart "file")
//	GET    /rosters                          list rosters
//	GET    /rosters/template                 download an empty import workbook
//	DELETE /rosters/{id}                     delete a roster
//	PUT    /rosters/{id}/active              activate a roster
//	GET    /rosters/{id}/results             scored exams (?exams=1,2)
//	GET    /rosters/{id}/export              xlsx or csv download (?format=)
//	GET    /rosters/{id}/analysis/{kind}     statistics (?class=&top=&metric=&exams=)
//	GET    /assignment-configs               list configs
//	POST   /assignment-configs               create from JSON
//	POST   /assignment-configs/import        import the text format
//	GET    /assignment-configs/{id}/export   download the text format
//	PUT    /assignment-configs/{id}/active   activate a config
//	DELETE /assignment-configs/{id}          delete a config
//
// {id} may be "active" wherever a roster is read.
package http
