package repository

import "faculty-portal/pkg/query"

// ── 各资源列表声明：可过滤字段、关联、默认排序 ──

var (
	UserList = &ListSpec{
		Schema: &query.Schema{
			IDField: "user_id",
			Fields: map[string]query.FieldType{
				"user_id": query.UUID, "name": query.String, "email": query.String,
				"role": query.String, "department_id": query.UUID, "is_active": query.Bool,
				"last_login_at": query.Time, "created_at": query.Time,
			},
			Relations:   []string{"department"},
			DateField:   "created_at",
			DefaultSort: "-created_at",
		},
		Preloads: []Preload{{Path: "Department"}},
	}

	FacultyList = &ListSpec{
		Schema: &query.Schema{
			IDField: "faculty_id",
			Fields: map[string]query.FieldType{
				"faculty_id": query.UUID, "name": query.String, "code": query.String,
				"dean": query.String, "established_year": query.Int, "created_at": query.Time,
			},
			DateField:   "created_at",
			DefaultSort: "name",
		},
	}

	DepartmentList = &ListSpec{
		Schema: &query.Schema{
			IDField: "department_id",
			Fields: map[string]query.FieldType{
				"department_id": query.UUID, "name": query.String, "code": query.String,
				"faculty_id": query.UUID, "head": query.String, "is_active": query.Bool,
				"created_at": query.Time,
			},
			Relations:   []string{"faculty"},
			DateField:   "created_at",
			DefaultSort: "name",
		},
		Preloads: []Preload{{Path: "Faculty", Columns: []string{"faculty_id", "name", "code"}}},
	}

	CourseList = &ListSpec{
		Schema: &query.Schema{
			IDField: "course_id",
			Fields: map[string]query.FieldType{
				"course_id": query.UUID, "code": query.String, "title": query.String,
				"credits": query.Int, "level": query.Int, "category": query.String,
				"department_id": query.UUID, "is_active": query.Bool, "created_at": query.Time,
			},
			Relations:     []string{"department"},
			DateField:     "created_at",
			CategoryField: "category",
			DefaultSort:   "code",
		},
		Preloads: []Preload{{Path: "Department", Columns: []string{"department_id", "name", "code", "faculty_id"}}},
	}

	TeacherList = &ListSpec{
		Schema: &query.Schema{
			IDField: "teacher_id",
			Fields: map[string]query.FieldType{
				"teacher_id": query.UUID, "user_id": query.UUID, "name": query.String,
				"email": query.String, "title": query.String, "specialization": query.String,
				"department_id": query.UUID, "hired_at": query.Time, "created_at": query.Time,
			},
			Relations:   []string{"department"},
			DateField:   "hired_at",
			DefaultSort: "name",
		},
		Preloads: []Preload{{Path: "Department", Columns: []string{"department_id", "name", "code"}}},
	}

	StudentList = &ListSpec{
		Schema: &query.Schema{
			IDField: "student_id",
			Fields: map[string]query.FieldType{
				"student_id": query.UUID, "user_id": query.UUID, "student_number": query.String,
				"name": query.String, "email": query.String, "department_id": query.UUID,
				"year_of_study": query.Int, "gpa": query.Float, "status": query.String,
				"created_at": query.Time,
			},
			Relations:   []string{"department"},
			DateField:   "created_at",
			DefaultSort: "student_number",
		},
		Preloads: []Preload{{Path: "Department", Columns: []string{"department_id", "name", "code"}}},
	}

	// 开课列表总是解析课程、课程所属系与任课教师
	OfferingList = &ListSpec{
		Schema: &query.Schema{
			IDField: "offering_id",
			Fields: map[string]query.FieldType{
				"offering_id": query.UUID, "course_id": query.UUID, "teacher_id": query.UUID,
				"semester": query.String, "year": query.Int, "capacity": query.Int,
				"room": query.String, "created_at": query.Time,
			},
			Relations:   []string{"course", "teacher"},
			DateField:   "created_at",
			DefaultSort: "-year",
		},
		Preloads: []Preload{
			{Path: "Course", Columns: []string{"course_id", "code", "title", "credits", "department_id"}},
			{Path: "Course.Department", Columns: []string{"department_id", "name", "code"}},
			{Path: "Teacher", Columns: []string{"teacher_id", "name", "email", "title"}},
		},
		AlwaysPopulate: true,
	}

	EnrollmentList = &ListSpec{
		Schema: &query.Schema{
			IDField: "enrollment_id",
			Fields: map[string]query.FieldType{
				"enrollment_id": query.UUID, "student_id": query.UUID, "offering_id": query.UUID,
				"status": query.String, "grade": query.String, "created_at": query.Time,
			},
			Relations:   []string{"student", "offering"},
			DateField:   "created_at",
			DefaultSort: "-created_at",
		},
		Preloads: []Preload{
			{Path: "Student", Columns: []string{"student_id", "user_id", "student_number", "name", "email"}},
			{Path: "Offering"},
			{Path: "Offering.Course", Columns: []string{"course_id", "code", "title", "credits"}},
		},
	}

	CommitteeList = &ListSpec{
		Schema: &query.Schema{
			IDField: "committee_member_id",
			Fields: map[string]query.FieldType{
				"committee_member_id": query.UUID, "user_id": query.UUID,
				"department_id": query.UUID, "position": query.String, "created_at": query.Time,
			},
			Relations:   []string{"user", "department"},
			DateField:   "created_at",
			DefaultSort: "-created_at",
		},
		Preloads: []Preload{
			{Path: "User", Columns: []string{"user_id", "name", "email", "role"}},
			{Path: "Department", Columns: []string{"department_id", "name", "code"}},
		},
	}

	ResearchList = &ListSpec{
		Schema: &query.Schema{
			IDField: "research_id",
			Fields: map[string]query.FieldType{
				"research_id": query.UUID, "title": query.String, "abstract": query.String,
				"category": query.String, "status": query.String, "student_id": query.UUID,
				"submitted_by": query.UUID, "department_id": query.UUID, "reviewer_id": query.UUID,
				"review_date": query.Time, "created_at": query.Time,
			},
			Relations:     []string{"student", "department", "reviewer"},
			DateField:     "created_at",
			CategoryField: "category",
			DefaultSort:   "-created_at",
		},
		Preloads: []Preload{
			{Path: "Student", Columns: []string{"student_id", "student_number", "name", "email"}},
			{Path: "Department", Columns: []string{"department_id", "name", "code"}},
			{Path: "Reviewer"},
			{Path: "Reviewer.User", Columns: []string{"user_id", "name", "email"}},
		},
	}

	AnnouncementList = &ListSpec{
		Schema: &query.Schema{
			IDField: "announcement_id",
			Fields: map[string]query.FieldType{
				"announcement_id": query.UUID, "title": query.String, "content": query.String,
				"category": query.String, "audience": query.String, "priority": query.String,
				"author_id": query.UUID, "published_at": query.Time, "expires_at": query.Time,
				"created_at": query.Time,
			},
			Relations:     []string{"author"},
			DateField:     "published_at",
			CategoryField: "category",
			DefaultSort:   "-published_at",
		},
		Preloads: []Preload{{Path: "Author", Columns: []string{"user_id", "name", "email"}}},
	}

	NewsList = &ListSpec{
		Schema: &query.Schema{
			IDField: "news_id",
			Fields: map[string]query.FieldType{
				"news_id": query.UUID, "title": query.String, "summary": query.String,
				"content": query.String, "category": query.String, "author_id": query.UUID,
				"published_at": query.Time, "created_at": query.Time,
			},
			Relations:     []string{"author"},
			DateField:     "published_at",
			CategoryField: "category",
			DefaultSort:   "-published_at",
		},
		Preloads: []Preload{{Path: "Author", Columns: []string{"user_id", "name", "email"}}},
	}

	EventList = &ListSpec{
		Schema: &query.Schema{
			IDField: "event_id",
			Fields: map[string]query.FieldType{
				"event_id": query.UUID, "title": query.String, "description": query.String,
				"category": query.String, "location": query.String, "start_at": query.Time,
				"end_at": query.Time, "organizer_id": query.UUID, "department_id": query.UUID,
				"created_at": query.Time,
			},
			Relations:     []string{"organizer", "department"},
			DateField:     "start_at",
			CategoryField: "category",
			DefaultSort:   "start_at",
		},
		Preloads: []Preload{
			{Path: "Organizer", Columns: []string{"user_id", "name", "email"}},
			{Path: "Department", Columns: []string{"department_id", "name", "code"}},
		},
	}

	ResourceList = &ListSpec{
		Schema: &query.Schema{
			IDField: "resource_id",
			Fields: map[string]query.FieldType{
				"resource_id": query.UUID, "title": query.String, "description": query.String,
				"category": query.String, "file_name": query.String, "file_size": query.Int,
				"mime_type": query.String, "uploader_id": query.UUID, "department_id": query.UUID,
				"created_at": query.Time,
			},
			Relations:     []string{"uploader", "department"},
			DateField:     "created_at",
			CategoryField: "category",
			DefaultSort:   "-created_at",
		},
		Preloads: []Preload{
			{Path: "Uploader", Columns: []string{"user_id", "name", "email"}},
			{Path: "Department", Columns: []string{"department_id", "name", "code"}},
		},
	}

	NotificationList = &ListSpec{
		Schema: &query.Schema{
			IDField: "notification_id",
			Fields: map[string]query.FieldType{
				"notification_id": query.UUID, "recipient_id": query.UUID, "sender_id": query.UUID,
				"type": query.String, "priority": query.String, "title": query.String,
				"related_type": query.String, "related_id": query.UUID, "is_read": query.Bool,
				"expires_at": query.Time, "created_at": query.Time,
			},
			Relations:     []string{"sender"},
			DateField:     "created_at",
			CategoryField: "type",
			DefaultSort:   "-created_at",
			DefaultLimit:  25,
		},
		Preloads: []Preload{{Path: "Sender", Columns: []string{"user_id", "name", "email"}}},
	}

	FeedbackList = &ListSpec{
		Schema: &query.Schema{
			IDField: "feedback_id",
			Fields: map[string]query.FieldType{
				"feedback_id": query.UUID, "submitter_id": query.UUID, "category": query.String,
				"subject": query.String, "message": query.String, "rating": query.Int,
				"course_id": query.UUID, "status": query.String, "responded_by": query.UUID,
				"created_at": query.Time,
			},
			Relations:     []string{"submitter", "course"},
			DateField:     "created_at",
			CategoryField: "category",
			DefaultSort:   "-created_at",
		},
		Preloads: []Preload{
			{Path: "Submitter", Columns: []string{"user_id", "name", "email"}},
			{Path: "Course", Columns: []string{"course_id", "code", "title"}},
		},
	}
)
